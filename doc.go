// Package smartglass provides a Go client for the console remote-control
// protocol: an encrypted, message-oriented session over UDP that multiplexes
// logical channels (system input, title control, auxiliary streams) across a
// single connection.
//
// The client abstracts the handshake, session dispatch, and channel
// multiplexing, exposing four core operations:
//
//   - Dial: discover the console, perform the retried handshake, and return
//     a connected Client
//   - LaunchTitle / StartDvrRecording: fire-and-forget console commands
//   - OpenChannel: open a correlated logical channel for a service
//   - OnConsoleStatus: subscribe to status snapshots pushed by the console
//
// Basic usage:
//
//	client, err := smartglass.Dial(ctx, smartglass.Config{
//	    Address: "10.0.0.5",
//	}, smartglass.LogErrors(log.Logger))
//	if err != nil {
//	    log.Fatal().Err(err).Msg("connect failed")
//	}
//	defer client.Close()
//
//	client.OnConsoleStatus(func(s *ConsoleStatus) {
//	    fmt.Println("build:", s.Configuration.BuildNumber)
//	})
//	client.LaunchTitle(0x2ed4f51c)
package smartglass
