// Package testutil provides testing utilities for selfcell.
//
// This package is intended for use in tests and benchmarks only.
// It provides values that record when they are dropped, so tests can verify
// teardown order and detect leaks or double drops.
//
// # Drop Order
//
//	log := &testutil.DropLog{}
//	cell := selfcell.New(testutil.NewTracked("owner", log, nil), func(o *testutil.Tracked) testutil.Tracked {
//	    return testutil.NewTracked("dependent", log, nil)
//	})
//	cell.Destroy()
//	log.Tags() // ["dependent", "owner"]
//
// # Leak Detection
//
//	var counter testutil.Counter
//	... construct and tear down cells holding NewTracked(..., &counter) ...
//	counter.Live() // 0 when every tracked value was dropped exactly once
package testutil
