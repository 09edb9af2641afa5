package sagepay

// PaymentError is a transport or protocol level failure: the gateway could
// not be reached or answered something unusable. It is not a card decline.
type PaymentError struct {
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// UnableToTakePayment is a well-formed business decline from the gateway,
// carrying the gateway's human-readable detail (e.g. "Card declined").
type UnableToTakePayment struct {
	Detail string
}

func (e *UnableToTakePayment) Error() string {
	return "unable to take payment: " + e.Detail
}
