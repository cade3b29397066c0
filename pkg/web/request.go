package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds inbound JSON bodies.
const maxBodyBytes = 1 << 20

// ErrEmptyBody is returned by Decode when the request carried no body.
var ErrEmptyBody = errors.New("request body is empty")

// Decode reads the body of an HTTP request and decodes it as JSON into val.
func Decode(r *http.Request, val any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(val); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("request: unable to decode payload: %w", err)
	}

	return nil
}
