package interfaces

import "context"

// ProfileStore patches owner profile documents with a stored blob id.
// Every method is an atomic single-field set on one document; implementations
// must not read-modify-write. Unknown ids yield domain.ErrProfileNotFound.
// Investors deliberately have no pitch-deck field.
type ProfileStore interface {
	SetUserProfilePicture(ctx context.Context, userID, fileID string) error
	SetStartupLogo(ctx context.Context, profileID, fileID string) error
	SetStartupPitchDeck(ctx context.Context, profileID, fileID string) error
	SetInvestorLogo(ctx context.Context, profileID, fileID string) error
}
