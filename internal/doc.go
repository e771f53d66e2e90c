// Package clockfeed shows world clocks next to collections fetched from
// remote JSON endpoints.
//
// # Architecture
//
// The service is structured into several key packages:
//   - clock: timezone and locale formatted clocks driven by a ticker
//   - loader: one-shot loading of remote collections
//   - dashboard: the registry that owns running clocks and collections
//   - grpc: the Dashboard gRPC service and its middleware
//   - journal: load and clock sample history on Postgres or SQLite
//   - scheduler: the periodic dashboard report
//   - render, greeting: terminal views of the dashboard
//
// Key Features
//
//   - Clocks:
//     Each clock refreshes once per second while visible and holds no
//     ticker while hidden. Every refresh reads the time once, so the time,
//     date and seconds digits always agree.
//
//   - Collections:
//     Each collection is requested once. It stays Loading until the response
//     arrives and then becomes Ready with its records or Failed with an
//     error; a response arriving after the owner went away is dropped.
//
//   - Transport:
//     The gRPC service tags requests with an id, rate limits, logs and
//     measures them, and caches collections that have finished loading.
//
// Example Usage
//
//	conn, err := grpc.NewClient("localhost:50051",
//	    grpc.WithTransportCredentials(insecure.NewCredentials()))
//	client := server.NewClient(conn)
//	clock, err := client.GetClock(ctx, "Italy")
//
// For more information about specific packages, see their respective
// documentation.
package clockfeed
