package repositories

import (
	"context"
)

// CheckinRepository maintains the activity and checkout-guardian links of a check-in.
type CheckinRepository interface {
	LinkActivities(ctx context.Context, checkinID int64, activityIDs []int64) error
	LinkCheckoutGuardians(ctx context.Context, checkinID int64, guardianIDs []int64) error
	UnlinkActivities(ctx context.Context, checkinID int64) error
	UnlinkCheckoutGuardians(ctx context.Context, checkinID int64) error
}

type checkinRepo struct {
	db Database
}

func NewCheckinRepo(db Database) CheckinRepository {
	return &checkinRepo{db: db}
}

func (r *checkinRepo) LinkActivities(ctx context.Context, checkinID int64, activityIDs []int64) error {
	for _, id := range activityIDs {
		if _, err := r.db.Exec(ctx, "INSERT INTO checkin_atividade (checkin, atividade) VALUES ($1, $2)", checkinID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *checkinRepo) LinkCheckoutGuardians(ctx context.Context, checkinID int64, guardianIDs []int64) error {
	for _, id := range guardianIDs {
		if _, err := r.db.Exec(ctx, "INSERT INTO checkin_responsavel_checkout (checkin, responsavel) VALUES ($1, $2)", checkinID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *checkinRepo) UnlinkActivities(ctx context.Context, checkinID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM checkin_atividade WHERE checkin = $1", checkinID)
	return err
}

func (r *checkinRepo) UnlinkCheckoutGuardians(ctx context.Context, checkinID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM checkin_responsavel_checkout WHERE checkin = $1", checkinID)
	return err
}
