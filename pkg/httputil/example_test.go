package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/stormgraph/pkg/httputil"
)

func ExampleBackoff_Do() {
	policy := httputil.Backoff{Attempts: 3, Initial: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return httputil.Retryable(errors.New("503 Service Unavailable"))
		}
		return nil
	})
	fmt.Println("calls:", calls, "err:", err)
	// Output:
	// calls: 3 err: <nil>
}
