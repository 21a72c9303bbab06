package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrRequestFailed is matched by every *RequestError. Transport failures,
// unexpected status codes and malformed payloads all collapse into it.
var ErrRequestFailed = errors.New("request failed")

// Detail texts for failures that carry no server message.
const (
	DetailRequest   = "request failed"
	DetailEmpty     = "received empty response"
	DetailMalformed = "received malformed response"
)

type RequestError struct {
	// StatusCode is 0 when no response was received.
	StatusCode int
	// Detail is the human-readable reason shown to the user.
	Detail string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrRequestFailed, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrRequestFailed, e.Detail)
}

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

func (e *RequestError) Unwrap() error { return e.Err }

// Detail returns the user-facing reason for err, falling back to a generic
// text for errors that are not *RequestError.
func Detail(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Detail
	}
	return "something went wrong"
}

// LoginRedirectResponse is the payload of GET /v1/auth/steam.
type LoginRedirectResponse struct {
	URL string `json:"url" validate:"required"`
}

// TokenResponse is the payload of login and refresh.
type TokenResponse struct {
	Token string `json:"token" validate:"required"`
}

// UserResponse is the payload of the account endpoints. User is kept as an
// opaque record.
type UserResponse struct {
	User map[string]any `json:"user" validate:"required"`
}

// MessageResponse is the body of error responses and of simple
// acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Check turns a call result into an error when the call failed at the
// transport level or the backend answered with a non-2xx status.
func Check(resp *Response, err error) (*Response, error) {
	if err != nil {
		return nil, &RequestError{Detail: DetailRequest, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &RequestError{StatusCode: resp.StatusCode, Detail: serverMessage(resp)}
	}
	return resp, nil
}

// Decode validates a call result against schema T. The status must be 200,
// the body must be a non-empty JSON value matching T, and T's validate tags
// must hold.
func Decode[T any](resp *Response, err error) (*T, error) {
	resp, err = Check(resp, err)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	if isEmpty(resp.Body) {
		return nil, &RequestError{StatusCode: resp.StatusCode, Detail: DetailEmpty}
	}

	out := new(T)
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Detail: DetailMalformed, Err: err}
	}
	if reflect.ValueOf(out).Elem().Kind() == reflect.Struct {
		if err := validate.Struct(out); err != nil {
			return nil, &RequestError{StatusCode: resp.StatusCode, Detail: describe(err), Err: err}
		}
	}
	return out, nil
}

func isEmpty(body []byte) bool {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return true
	}
	switch string(b) {
	case "null", "{}", "[]", `""`:
		return true
	}
	return false
}

func serverMessage(resp *Response) string {
	var m MessageResponse
	if json.Unmarshal(resp.Body, &m) == nil && strings.TrimSpace(m.Message) != "" {
		return m.Message
	}
	if t := http.StatusText(resp.StatusCode); t != "" {
		return t
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return "missing " + strings.Join(fields, ", ")
	}
	return DetailMalformed
}
