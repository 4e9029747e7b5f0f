package database

import (
	"context"
	"fmt"
	"strings"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) CreateAccount(ctx context.Context, a *models.Account) error {
	a.Email = strings.ToLower(a.Email)

	count, err := s.accounts().CountDocuments(ctx, bson.M{"email": a.Email})
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("email already registered")
	}

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, err := s.accounts().InsertOne(ctx, a); err != nil {
		// lost the race against a concurrent signup
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("email already registered")
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *MongoStore) GetAccount(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var a models.Account
	if err := s.accounts().FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, notFound(err, "user not found")
	}
	return &a, nil
}

func (s *MongoStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := s.accounts().FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&a); err != nil {
		return nil, notFound(err, "user not found")
	}
	return &a, nil
}

func (s *MongoStore) ListAccounts(ctx context.Context, filter store.AccountFilter) ([]models.Account, error) {
	query := bson.M{}
	switch {
	case filter.Role != "":
		query["role"] = filter.Role
	case filter.ExcludeRole != "":
		query["role"] = bson.M{"$ne": filter.ExcludeRole}
	}

	opts := options.Find().SetSort(bson.D{{Key: "registeredAt", Value: -1}})
	cursor, err := s.accounts().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := []models.Account{}
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

func (s *MongoStore) UpdateAccount(ctx context.Context, id primitive.ObjectID, update models.AccountUpdate) (*models.Account, error) {
	if update.Email != nil {
		lower := strings.ToLower(*update.Email)
		update.Email = &lower
		count, err := s.accounts().CountDocuments(ctx, bson.M{"email": lower, "_id": bson.M{"$ne": id}})
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return nil, apperr.Conflict("email already registered")
		}
	}

	set := update.SetDocument()
	set["updatedAt"] = s.now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a models.Account
	err := s.accounts().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, notFound(err, "user not found")
	}
	return &a, nil
}

func (s *MongoStore) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.accounts().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (s *MongoStore) AccountSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AccountSummary, error) {
	out := make(map[primitive.ObjectID]models.AccountSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cursor, err := s.accounts().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("query account summaries: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var a models.Account
		if err := cursor.Decode(&a); err != nil {
			return nil, fmt.Errorf("decode account summary: %w", err)
		}
		out[a.ID] = a.Summary()
	}
	return out, cursor.Err()
}
