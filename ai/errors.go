// Copyright 2025 Signalpath Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Provider error taxonomy. Callers distinguish error classes with
// errors.Is and the predicate helpers below.
var (
	// ErrMissingAPIKey indicates the provider credential is absent.
	// Fatal configuration error; never retried.
	ErrMissingAPIKey = errors.New("embedding provider credential required")

	// ErrInvalidConfig indicates a malformed provider configuration.
	// Fatal; never retried.
	ErrInvalidConfig = errors.New("invalid embedding configuration")

	// ErrEmptyInput indicates embedding was requested for empty text.
	// Caller error; never retried.
	ErrEmptyInput = errors.New("cannot embed empty text")

	// ErrInvalidDimension indicates the provider returned a vector whose
	// length does not match the configured model dimension. Treated as a
	// provider/version mismatch requiring operator attention, not a
	// transient hiccup; never retried.
	ErrInvalidDimension = errors.New("embedding dimension mismatch")

	// ErrInvalidResponse indicates a malformed provider payload.
	// Never retried.
	ErrInvalidResponse = errors.New("invalid embedding response")

	// ErrRateLimited indicates the provider rejected the call for rate
	// limiting. Retryable, but distinguished so callers can apply a
	// longer cool-down than generic transient errors.
	ErrRateLimited = errors.New("embedding provider rate limited")

	// ErrProviderUnavailable indicates a transient network or provider
	// failure (timeout, connection failure, 5xx). Retryable.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
)

// IsRetryable reports whether an error belongs to a transient class that
// may succeed on retry. Configuration, validation and invalid-response
// errors short-circuit without consuming a retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}

// IsRateLimited reports whether an error is a distinguished rate-limit
// response.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// rate-limit and transient markers seen in OpenAI-compatible error strings
var (
	rateLimitMarkers = []string{"429", "rate limit", "too many requests", "quota"}
	transientMarkers = []string{
		"500", "502", "503", "504",
		"timeout", "timed out", "deadline exceeded",
		"connection refused", "connection reset", "broken pipe",
		"unexpected eof", "no such host", "service unavailable",
		"temporarily",
	}
)

// ClassifyProviderError maps a raw provider error onto the taxonomy.
// Unrecognized errors pass through unchanged and are treated as
// non-retryable. Context cancellation is returned as-is so callers can
// distinguish their own timeouts from provider failures.
func ClassifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrProviderUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errors.Join(ErrProviderUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return errors.Join(ErrRateLimited, err)
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return errors.Join(ErrProviderUnavailable, err)
		}
	}

	return err
}
