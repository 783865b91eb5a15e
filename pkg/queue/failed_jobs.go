package queue

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// FailedJobRecord is the row/document written for every exhausted job.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" bson:"-"`
	JobType  string    `gorm:"size:255;not null;index" bson:"jobType"`
	Payload  string    `gorm:"type:text;not null" bson:"payload"`
	Error    string    `gorm:"type:text" bson:"error"`
	Attempts int       `gorm:"not null;default:0" bson:"attempts"`
	FailedAt time.Time `bson:"failedAt"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

func recordOf(f FailedJob) FailedJobRecord {
	return FailedJobRecord{
		JobType:  f.Type,
		Payload:  string(f.Payload),
		Error:    f.Err,
		Attempts: f.Attempts,
		FailedAt: f.FailedAt,
	}
}

// GormFailedStore writes failed jobs to the failed_jobs table. The table is
// created by the migrations.
type GormFailedStore struct{ db *gorm.DB }

func NewGormFailedStore(db *gorm.DB) *GormFailedStore { return &GormFailedStore{db: db} }

func (s *GormFailedStore) Record(ctx context.Context, f FailedJob) error {
	rec := recordOf(f)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("queue: record failed job: %w", err)
	}
	return nil
}

// MongoFailedStore writes failed jobs to the failed_jobs collection.
type MongoFailedStore struct{ coll *mongo.Collection }

func NewMongoFailedStore(db *mongo.Database) *MongoFailedStore {
	return &MongoFailedStore{coll: db.Collection("failed_jobs")}
}

func (s *MongoFailedStore) Record(ctx context.Context, f FailedJob) error {
	if _, err := s.coll.InsertOne(ctx, recordOf(f)); err != nil {
		return fmt.Errorf("queue: record failed job: %w", err)
	}
	return nil
}
