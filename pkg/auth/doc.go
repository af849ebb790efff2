// Package auth obtains and stores OAuth2 access tokens for the Reddit API.
//
// Reddit hands out short-lived bearer tokens (about an hour) from its
// token endpoint. The package supports the two grants useful for script
// applications:
//
//   - password: a script app acting as a specific Reddit account
//   - client_credentials: application-only access, no user context
//
// The Authenticator performs the token request. A Store keeps the token
// across requests (in memory, or in Redis so several processes share one
// token instead of each requesting their own). CachedSource plugs the two
// together and is what the HTTP client consumes:
//
//	authenticator, err := auth.NewAuthenticator(auth.Config{
//		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
//		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
//		UserAgent:    "my-tool/1.0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	source := auth.NewCachedSource(authenticator, auth.NewMemoryStore())
//	token, err := source.Token(ctx)
//
// Tokens are refreshed shortly before they expire so in-flight requests
// never carry a token about to lapse.
package auth
