package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	body := "VPSProtocol=3.0\r\n" +
		"Status=OK\r\n" +
		"StatusDetail=Transaction registered successfully.\r\n" +
		"VPSTxId={4F5C3E1A-22B1-4D0A-BB69-1234567890AB}\r\n" +
		"SecurityKey=OHMETD7DFK\r\n" +
		"TxAuthNo=1001\r\n"

	resp := ParseResponse(body)

	require.Equal(t, "OK", resp.Status)
	require.Equal(t, "Transaction registered successfully.", resp.StatusDetail)
	require.Equal(t, "{4F5C3E1A-22B1-4D0A-BB69-1234567890AB}", resp.TxID)
	require.Equal(t, "OHMETD7DFK", resp.SecurityKey)
	require.Equal(t, "1001", resp.TxAuthNum)
	require.Equal(t, body, resp.Raw)
	require.True(t, resp.Successful())
}

func TestParseResponseDecline(t *testing.T) {
	body := "VPSProtocol=3.0\r\nStatus=NOTAUTHED\r\nStatusDetail=Card declined by the bank.\r\n"

	resp := ParseResponse(body)

	require.Equal(t, StatusNotAuthed, resp.Status)
	require.False(t, resp.Successful())
	require.Empty(t, resp.TxID)
}

func TestParseResponseValueContainingEquals(t *testing.T) {
	resp := ParseResponse("Status=ERROR\r\nStatusDetail=5006 : unable to redirect, url=x\r\n")

	require.Equal(t, "5006 : unable to redirect, url=x", resp.StatusDetail)
}

func TestSuccessfulStatuses(t *testing.T) {
	for _, status := range []string{StatusOK, StatusRegistered, StatusAuthenticated} {
		require.True(t, (&Response{Status: status}).Successful(), status)
	}
	for _, status := range []string{StatusMalformed, StatusInvalid, StatusNotAuthed, StatusRejected, StatusAbort, StatusError, ""} {
		require.False(t, (&Response{Status: status}).Successful(), status)
	}
}
