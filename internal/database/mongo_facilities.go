package database

import (
	"context"
	"fmt"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) CreateFacility(ctx context.Context, f *models.Facility) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if _, err := s.facilities().InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert facility: %w", err)
	}
	return nil
}

func (s *MongoStore) GetFacility(ctx context.Context, id primitive.ObjectID) (*models.Facility, error) {
	var f models.Facility
	if err := s.facilities().FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, notFound(err, "facility not found")
	}
	return &f, nil
}

func (s *MongoStore) ListFacilities(ctx context.Context, filter store.FacilityFilter) ([]models.Facility, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AccessType != "" {
		query["accessType"] = filter.AccessType
	}
	if filter.District != "" {
		query["location.district"] = filter.District
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.findFacilities(ctx, query, opts)
}

func (s *MongoStore) findFacilities(ctx context.Context, query bson.M, opts ...*options.FindOptions) ([]models.Facility, error) {
	cursor, err := s.facilities().Find(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}
	defer cursor.Close(ctx)

	facilities := []models.Facility{}
	if err := cursor.All(ctx, &facilities); err != nil {
		return nil, fmt.Errorf("decode facilities: %w", err)
	}
	return facilities, nil
}

func (s *MongoStore) UpdateFacility(ctx context.Context, id primitive.ObjectID, patch models.FacilityPatch) (*models.Facility, error) {
	set := patch.SetDocument()
	set["updatedAt"] = s.now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f models.Facility
	if err := s.facilities().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&f); err != nil {
		return nil, notFound(err, "facility not found")
	}
	return &f, nil
}

func (s *MongoStore) DeleteFacility(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.facilities().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete facility: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("facility not found")
	}
	return nil
}

// NearbyFacilities relies on the 2dsphere index; $nearSphere already returns
// documents nearest first.
func (s *MongoStore) NearbyFacilities(ctx context.Context, center models.GeoPoint, maxMeters float64) ([]models.Facility, error) {
	query := bson.M{
		"location.coordinates": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    center,
				"$maxDistance": maxMeters,
			},
		},
		"status": models.FacilityActive,
	}
	return s.findFacilities(ctx, query)
}
