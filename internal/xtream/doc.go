// Package xtream is a client for Xtream-Codes style IPTV panels.
//
// Every call goes to {server}/player_api.php with the account credentials
// in the query string and an action parameter:
//
//	client, err := xtream.NewClient(xtream.Credentials{
//	    ServerURL: "http://panel.example.com:8080",
//	    Username:  "user",
//	    Password:  "secret",
//	})
//	account, err := client.Authenticate(ctx)
//	cats, err := client.LiveCategories(ctx)
//
// Panels are inconsistent about JSON types, so ids and timestamps are
// decoded as FlexString, and objects that arrive as empty arrays decode as
// zero values.
//
// # Errors
//
// Failures are *APIError values classified by ErrorType. Network errors,
// timeouts and 5xx responses are retried with exponential backoff; auth,
// parse and 4xx errors are returned at once. UserMessage gives the alert
// text for any error.
//
// Stream URLs embed the credentials. Logging goes through
// logging.LogAPICall, which redacts them.
package xtream
