// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the payment provider's payload signature.
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance is the maximum age of a signed timestamp.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("webhook: missing signature")
	ErrInvalidSignature = errors.New("webhook: invalid signature")
)

// VerifySignature checks a header of the form "t=<unix>,v1=<hex>[,v1=...]"
// against payload. The signature is HMAC-SHA256 over "<t>.<payload>"; any
// matching v1 entry is accepted. Timestamps further than tolerance from
// now are rejected.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}
	if secret == "" {
		return fmt.Errorf("%w: no signing secret configured", ErrInvalidSignature)
	}

	var (
		timestamp string
		sigs      []string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if timestamp == "" || len(sigs) == 0 {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(unix, 0))
		if age > tolerance || age < -tolerance {
			return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
		}
	}

	expected := computeSignature(payload, timestamp, secret)
	for _, s := range sigs {
		got, err := hex.DecodeString(s)
		if err != nil {
			continue
		}
		if hmac.Equal(got, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignatureFor builds a header value signing payload at t, in the format
// VerifySignature accepts.
func SignatureFor(payload []byte, secret string, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return "t=" + ts + ",v1=" + hex.EncodeToString(computeSignature(payload, ts, secret))
}

func computeSignature(payload []byte, timestamp, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
