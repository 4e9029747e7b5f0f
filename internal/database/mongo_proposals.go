package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/logger"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reconcileGrace keeps the sweep away from reviews that are still in flight.
const reconcileGrace = time.Minute

func errAlreadyReviewed() error {
	return apperr.New(apperr.ErrAlreadyReviewed, "proposal has already been reviewed")
}

func (s *MongoStore) CreateProposal(ctx context.Context, p *models.Proposal) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := s.proposals().InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (s *MongoStore) GetProposal(ctx context.Context, id primitive.ObjectID) (*models.Proposal, error) {
	var p models.Proposal
	if err := s.proposals().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err, "proposal not found")
	}
	return &p, nil
}

func (s *MongoStore) ListProposals(ctx context.Context, filter store.ProposalFilter) ([]models.Proposal, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.SubmittedBy != nil {
		query["submittedBy"] = *filter.SubmittedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cursor, err := s.proposals().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	defer cursor.Close(ctx)

	proposals := []models.Proposal{}
	if err := cursor.All(ctx, &proposals); err != nil {
		return nil, fmt.Errorf("decode proposals: %w", err)
	}
	return proposals, nil
}

func (s *MongoStore) DeleteProposal(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.proposals().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("proposal not found")
	}
	return nil
}

// claim moves a proposal out of pending in one conditional update. Of two concurrent
// reviewers only one can match the status filter.
func (s *MongoStore) claim(ctx context.Context, id primitive.ObjectID, outcome models.ProposalStatus, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, error) {
	filter := bson.M{"_id": id, "status": models.ProposalPending}
	update := bson.M{"$set": bson.M{"status": outcome, "reviewedBy": reviewer, "reviewedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Proposal
	err := s.proposals().FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.claimConflict(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("claim proposal: %w", err)
	}
	return &p, nil
}

// claimConflict explains a failed claim: the proposal is mid-review, was already
// resolved, or never existed.
func (s *MongoStore) claimConflict(ctx context.Context, id primitive.ObjectID) error {
	err := s.proposals().FindOne(ctx, bson.M{"_id": id}).Err()
	if err == nil {
		return errAlreadyReviewed()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("load proposal: %w", err)
	}

	count, err := s.reviews().CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check review ledger: %w", err)
	}
	if count > 0 {
		return errAlreadyReviewed()
	}
	return apperr.NotFound("proposal not found")
}

// releaseClaim puts a claimed proposal back to pending after a failed approval.
func (s *MongoStore) releaseClaim(ctx context.Context, p *models.Proposal) error {
	_, err := s.proposals().UpdateOne(ctx,
		bson.M{"_id": p.ID, "status": p.Status},
		bson.M{
			"$set":   bson.M{"status": models.ProposalPending},
			"$unset": bson.M{"reviewedBy": "", "reviewedAt": ""},
		},
	)
	return err
}

// materialize inserts the facility for an approved proposal. The unique index on
// sourceProposalId makes it safe to repeat.
func (s *MongoStore) materialize(ctx context.Context, p *models.Proposal) (*models.Facility, error) {
	f := p.ToFacility(*p.ReviewedBy, *p.ReviewedAt)
	_, err := s.facilities().InsertOne(ctx, f)
	if err == nil {
		return &f, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("insert facility: %w", err)
	}

	var existing models.Facility
	if err := s.facilities().FindOne(ctx, bson.M{"sourceProposalId": p.ID}).Decode(&existing); err != nil {
		return nil, fmt.Errorf("load materialized facility: %w", err)
	}
	return &existing, nil
}

// completeReview writes the ledger entry, credits the submitter on a first approval
// and removes the proposal. Every step is idempotent.
func (s *MongoStore) completeReview(ctx context.Context, p *models.Proposal) error {
	res, err := s.reviews().UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$setOnInsert": bson.M{
			"outcome":    p.Status,
			"reviewedBy": *p.ReviewedBy,
			"reviewedAt": *p.ReviewedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("record review: %w", err)
	}

	if res.UpsertedCount == 1 && p.Status == models.ProposalApproved {
		if _, err := s.accounts().UpdateOne(ctx,
			bson.M{"_id": p.SubmittedBy},
			bson.M{"$inc": bson.M{"facilitiesAdded": 1}},
		); err != nil {
			return fmt.Errorf("credit submitter: %w", err)
		}
	}

	if _, err := s.proposals().DeleteOne(ctx, bson.M{"_id": p.ID}); err != nil {
		return fmt.Errorf("delete reviewed proposal: %w", err)
	}
	return nil
}

type approval struct {
	proposal *models.Proposal
	facility *models.Facility
}

func (s *MongoStore) ApproveProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, *models.Facility, error) {
	if s.transactions {
		res, err := s.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			p, err := s.claim(sc, id, models.ProposalApproved, reviewer, at)
			if err != nil {
				return nil, err
			}
			f, err := s.materialize(sc, p)
			if err != nil {
				return nil, err
			}
			if err := s.completeReview(sc, p); err != nil {
				return nil, err
			}
			return approval{proposal: p, facility: f}, nil
		})
		if err != nil {
			return nil, nil, err
		}
		a := res.(approval)
		return a.proposal, a.facility, nil
	}

	p, err := s.claim(ctx, id, models.ProposalApproved, reviewer, at)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.materialize(ctx, p)
	if err != nil {
		if rerr := s.releaseClaim(ctx, p); rerr != nil {
			logger.Error("CRITICAL: failed to release proposal claim after facility insert failed",
				"proposalId", p.ID.Hex(), "error", rerr)
		}
		return nil, nil, err
	}
	// The facility exists from here on; leftovers are finished by ReconcileProposals.
	if err := s.completeReview(ctx, p); err != nil {
		logger.Warn("Approval left for reconciliation", "proposalId", p.ID.Hex(), "error", err)
	}
	return p, f, nil
}

func (s *MongoStore) RejectProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, error) {
	if s.transactions {
		res, err := s.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			p, err := s.claim(sc, id, models.ProposalRejected, reviewer, at)
			if err != nil {
				return nil, err
			}
			if err := s.completeReview(sc, p); err != nil {
				return nil, err
			}
			return p, nil
		})
		if err != nil {
			return nil, err
		}
		return res.(*models.Proposal), nil
	}

	p, err := s.claim(ctx, id, models.ProposalRejected, reviewer, at)
	if err != nil {
		return nil, err
	}
	if err := s.completeReview(ctx, p); err != nil {
		logger.Warn("Rejection left for reconciliation", "proposalId", p.ID.Hex(), "error", err)
	}
	return p, nil
}

func (s *MongoStore) inTransaction(ctx context.Context, fn func(mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)
	return session.WithTransaction(ctx, fn)
}

// ReconcileProposals finishes proposals that were claimed but never removed, for
// example after a crash between the facility insert and the delete.
func (s *MongoStore) ReconcileProposals(ctx context.Context) (int, error) {
	filter := bson.M{
		"status":     bson.M{"$in": []models.ProposalStatus{models.ProposalApproved, models.ProposalRejected}},
		"reviewedAt": bson.M{"$lt": s.now().Add(-reconcileGrace)},
	}
	cursor, err := s.proposals().Find(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("query stale reviews: %w", err)
	}
	var stale []models.Proposal
	if err := cursor.All(ctx, &stale); err != nil {
		return 0, fmt.Errorf("decode stale reviews: %w", err)
	}

	done := 0
	for i := range stale {
		p := &stale[i]
		if p.ReviewedBy == nil || p.ReviewedAt == nil {
			logger.Warn("Skipping claimed proposal without reviewer", "proposalId", p.ID.Hex())
			continue
		}
		if p.Status == models.ProposalApproved {
			if _, err := s.materialize(ctx, p); err != nil {
				return done, err
			}
		}
		if err := s.completeReview(ctx, p); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}
