package repository

import (
	"context"
	"time"

	"museumtix/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// GormChatLogRepository keeps the chat audit log in the relational store.
type GormChatLogRepository struct {
	db *gorm.DB
}

func NewGormChatLogRepository(db *gorm.DB) *GormChatLogRepository {
	return &GormChatLogRepository{db: db}
}

func (r *GormChatLogRepository) Append(ctx context.Context, e *domain.ChatLogEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *GormChatLogRepository) Recent(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error) {
	var out []domain.ChatLogEntry
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("timestamp DESC").Limit(limit).Find(&out).Error
	return out, err
}

// RouteCount is the number of chat turns answered by one route.
type RouteCount struct {
	Route string `json:"route" bson:"_id"`
	Turns int    `json:"turns" bson:"turns"`
}

// RouteCounts groups the turns logged in [from, to) by route.
func (r *GormChatLogRepository) RouteCounts(ctx context.Context, from, to time.Time) ([]RouteCount, error) {
	var out []RouteCount
	err := r.db.WithContext(ctx).Model(&domain.ChatLogEntry{}).
		Select("route, count(*) AS turns").
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Group("route").Order("route").
		Scan(&out).Error
	return out, err
}

const chatLogCollection = "chat_logs"

// MongoChatLogRepository appends chat log documents to a collection.
type MongoChatLogRepository struct {
	coll *mongo.Collection
}

func NewMongoChatLogRepository(db *mongo.Database) *MongoChatLogRepository {
	return &MongoChatLogRepository{coll: db.Collection(chatLogCollection)}
}

func (r *MongoChatLogRepository) Append(ctx context.Context, e *domain.ChatLogEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, e)
	return err
}

func (r *MongoChatLogRepository) Recent(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.ChatLogEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoChatLogRepository) RouteCounts(ctx context.Context, from, to time.Time) ([]RouteCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{"_id": "$route", "turns": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []RouteCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
