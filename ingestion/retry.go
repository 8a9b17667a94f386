// Copyright 2025 Poiesic Systems
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


package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryWithBackoff executes an operation with exponential backoff retry logic.
// It makes up to maxAttempts attempts, waiting baseDelay * 2^(attempt-1)
// between them. Only errors marked with retry.RetryableError are retried;
// any other error is returned at once. After the last attempt the
// unmarked cause is returned.
func RetryWithBackoff(ctx context.Context, operation func(ctx context.Context) error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = time.Millisecond
	}

	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewExponential(baseDelay))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := operation(ctx)
		switch {
		case err == nil && attempt > 1:
			slog.Debug("operation succeeded after retry", "attempt", attempt)
		case err != nil && attempt < maxAttempts:
			slog.Debug("operation failed", "attempt", attempt, "maxAttempts", maxAttempts, "error", err)
		}
		return err
	})
}
