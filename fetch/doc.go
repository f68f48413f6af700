// Package fetch provides an asynchronous HTTP request abstraction.
//
// A call to Send starts the network operation in the background and
// immediately returns a Task: the completion token for the request. The Task
// resolves exactly once, either with a *Response (the server answered with a
// 2xx status) or with an error. Errors come in two disjoint shapes:
//
//   - Data-level failure: the server answered with a non-2xx status. The error
//     is a *StatusError carrying the status, status text, raw body and parsed
//     headers, so the server's error payload stays inspectable.
//   - Transport-level failure: no valid HTTP exchange completed. The error is
//     ErrTimeout, ErrAborted or a *NetworkError, discriminated with errors.Is
//     and errors.As.
//
// Basic Usage:
//
//	task := fetch.Send(fetch.Options{
//	    URL:     "https://api.example.com/users",
//	    Headers: map[string]string{"Authorization": "Bearer token"},
//	})
//
//	resp, err := task.Wait(context.Background())
//	if err != nil {
//	    var status *fetch.StatusError
//	    if errors.As(err, &status) {
//	        log.Fatalf("server said %d: %s", status.StatusCode, status.RawBody)
//	    }
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.StatusCode)
//	fmt.Printf("Body: %v\n", resp.Body)
//
// Streaming:
//
// While the response body is arriving, the task can notify the caller of every
// newly received increment and of byte-level progress:
//
//	task := fetch.Send(fetch.Options{
//	    URL:     "https://example.com/stream",
//	    Kind:    fetch.KindText,
//	    OnChunk: func(chunk string) { fmt.Print(chunk) },
//	    OnProgress: func(loaded, total int64) {
//	        fmt.Printf("\r%d/%d bytes", loaded, total)
//	    },
//	})
//
// Cancellation:
//
// The Task exposes the raw transport handle. Calling Abort (on the Task or on
// the handle directly) resolves the task with ErrAborted, never silently.
//
// Thread Safety:
//
// A Task may be awaited from multiple goroutines. Options values are not
// retained after Send returns, except for the callbacks, which are invoked
// from the task's own goroutine.
package fetch
