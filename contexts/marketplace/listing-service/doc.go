// Package listingservice implements the vehicle listing lifecycle of the
// Autoboard marketplace: guest and member submission, email verification,
// quota checks, moderation, notification fan-out and favorites.
//
// Domain and application logic stay behind ports; concrete storage,
// search, messaging and mail live in adapters composed by NewModule.
package listingservice
