// Copyright © 2023 Meroxa, Inc. & Yalantis
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

package graph

import (
	"context"
	"fmt"
	"time"
)

// retryBaseDelay is doubled on every attempt, capped at 2^5.
const retryBaseDelay = 50 * time.Millisecond

// withRetry runs fn up to maxRetries+1 times with exponential backoff between
// attempts, giving up early when the context is done.
func (s *Store) withRetry(ctx context.Context, fn func(context.Context) error) error {
	var attempt int

	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if attempt >= s.maxRetries {
			return fmt.Errorf("batch failed after %d attempts: %w", attempt+1, err)
		}

		attempt++

		shift := attempt
		if shift > 5 {
			shift = 5
		}
		delay := retryBaseDelay * (1 << shift)

		s.logger.Warn().
			Int("attempt", attempt).
			Int("max_retries", s.maxRetries).
			Dur("backoff", delay).
			Err(err).
			Msg("batch write failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
