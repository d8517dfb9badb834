package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/venturelink/fileserve/applications/server/domain"
	"github.com/venturelink/fileserve/applications/server/interfaces"
)

type profileStore struct {
	users     *mongo.Collection
	startups  *mongo.Collection
	investors *mongo.Collection
}

// NewProfileStore patches the platform's profile collections. Updates are
// single-field $set operations so concurrent uploads to the same owner
// document stay individually atomic.
func NewProfileStore(db *mongo.Database) interfaces.ProfileStore {
	return &profileStore{
		users:     db.Collection("users"),
		startups:  db.Collection("startups"),
		investors: db.Collection("investors"),
	}
}

func (s *profileStore) SetUserProfilePicture(ctx context.Context, userID, fileID string) error {
	return s.setField(ctx, s.users, userID, "profilePictureFileId", fileID)
}

func (s *profileStore) SetStartupLogo(ctx context.Context, profileID, fileID string) error {
	return s.setField(ctx, s.startups, profileID, "logoFileId", fileID)
}

func (s *profileStore) SetStartupPitchDeck(ctx context.Context, profileID, fileID string) error {
	return s.setField(ctx, s.startups, profileID, "pitchDeckFileId", fileID)
}

func (s *profileStore) SetInvestorLogo(ctx context.Context, profileID, fileID string) error {
	return s.setField(ctx, s.investors, profileID, "logoFileId", fileID)
}

func (s *profileStore) setField(ctx context.Context, col *mongo.Collection, id, field, fileID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProfileNotFound
	}

	res, err := col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{field: fileID}})
	if err != nil {
		return fmt.Errorf("can't update %s.%s: %w", col.Name(), field, err)
	}

	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}
