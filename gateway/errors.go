package gateway

import "fmt"

// GatewayError is a transport or protocol level failure: the network
// exchange did not complete, or the reply could not be understood. Business
// declines are not GatewayErrors.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
