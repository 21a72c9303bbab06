package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func resp(status int, body string) *Response {
	return &Response{StatusCode: status, Header: http.Header{}, Body: []byte(body)}
}

func TestDecodeSuccess(t *testing.T) {
	tok, err := Decode[TokenResponse](resp(200, `{"token":"abc"}`), nil)
	require.NoError(t, err)
	require.Equal(t, "abc", tok.Token)

	u, err := Decode[UserResponse](resp(200, `{"user":{"uid":"1","missions":[]}}`), nil)
	require.NoError(t, err)
	require.Equal(t, "1", u.User["uid"])
}

func TestDecodeFailures(t *testing.T) {
	cases := []struct {
		name   string
		resp   *Response
		err    error
		detail string
		status int
	}{
		{"transport", nil, errors.New("dial tcp: refused"), DetailRequest, 0},
		{"server message", resp(403, `{"message":"Forbidden to do that"}`), nil, "Forbidden to do that", 403},
		{"no server message", resp(500, `oops`), nil, "Internal Server Error", 500},
		{"non-200 success", resp(201, `{"token":"abc"}`), nil, "unexpected status 201", 201},
		{"empty body", resp(200, ``), nil, DetailEmpty, 200},
		{"null body", resp(200, `null`), nil, DetailEmpty, 200},
		{"empty object", resp(200, ` {} `), nil, DetailEmpty, 200},
		{"not json", resp(200, `<html>`), nil, DetailMalformed, 200},
		{"wrong type", resp(200, `{"token":5}`), nil, DetailMalformed, 200},
		{"missing field", resp(200, `{"other":"x"}`), nil, "missing token", 200},
		{"empty field", resp(200, `{"token":""}`), nil, "missing token", 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Decode[TokenResponse](tc.resp, tc.err)
			require.Nil(t, out)
			require.ErrorIs(t, err, ErrRequestFailed)

			var re *RequestError
			require.ErrorAs(t, err, &re)
			require.Equal(t, tc.detail, re.Detail)
			require.Equal(t, tc.status, re.StatusCode)
			require.Equal(t, tc.detail, Detail(err))
		})
	}
}

func TestDecodeUserMustBeObject(t *testing.T) {
	_, err := Decode[UserResponse](resp(200, `{"user":"bob"}`), nil)
	require.ErrorIs(t, err, ErrRequestFailed)

	_, err = Decode[UserResponse](resp(200, `{"user":null}`), nil)
	require.ErrorIs(t, err, ErrRequestFailed)
	require.Equal(t, "missing user", Detail(err))
}

func TestCheck(t *testing.T) {
	r, err := Check(resp(204, ``), nil)
	require.NoError(t, err)
	require.Equal(t, 204, r.StatusCode)

	_, err = Check(resp(404, `{"message":"Community not found"}`), nil)
	require.ErrorIs(t, err, ErrRequestFailed)
	require.Equal(t, "Community not found", Detail(err))

	require.Equal(t, "something went wrong", Detail(errors.New("x")))
}
