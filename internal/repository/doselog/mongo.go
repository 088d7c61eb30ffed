package doseLogRepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	ports "github.com/admin/tg-bots/dose-bot/internal/ports/repository"
)

const logsCollection = "logs"

// logDocument {userID, doses: {"YYYY": [...]}}
type logDocument struct {
	UserID int64                    `bson:"userID"`
	Doses  map[string][]entryRecord `bson:"doses"`
}

// MongoRepository лог доз в MongoDB, документ на пользователя
type MongoRepository struct {
	coll *mongo.Collection
	Log  *slog.Logger
}

func NewMongo(db *mongo.Database, log *slog.Logger) *MongoRepository {
	return &MongoRepository{
		coll: db.Collection(logsCollection),
		Log:  log,
	}
}

var _ ports.IDoseLogRepo = (*MongoRepository)(nil)

// EnsureIndexes уникальный индекс по userID
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userID", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create logs index: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByUserID(ctx context.Context, userID int64) (*domain.DoseLog, error) {
	var doc logDocument
	err := r.coll.FindOne(ctx, bson.M{"userID": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to get dose log", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get dose log: %w", err)
	}

	return toDoseLog(userID, doc.Doses)
}

// AppendEntry $addToSet с upsert: лог и корзина создаются при первой записи
func (r *MongoRepository) AppendEntry(ctx context.Context, userID int64, year string, entry domain.Entry) error {
	filter := bson.M{"userID": userID}
	update := bson.M{"$addToSet": bson.M{bucketPath(year): toRecord(entry)}}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// параллельный upsert уже создал документ, повторяем как обычный update
		_, err = r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	}
	if err != nil {
		r.Log.Error("failed to append dose entry", "error", err, "user_id", userID, "year", year)
		return fmt.Errorf("failed to append dose entry: %w", err)
	}
	r.Log.Debug("dose entry appended", "user_id", userID, "year", year)
	return nil
}

// RemoveEntry условный pipeline-update: срабатывает, только если по индексу лежит expected
func (r *MongoRepository) RemoveEntry(ctx context.Context, userID int64, year string, index int, expected domain.Entry) error {
	if index < 0 {
		return domain.ErrNotFound
	}

	path := bucketPath(year)
	field := "$" + path
	filter := bson.M{"userID": userID}
	filter[path+"."+strconv.Itoa(index)] = toRecord(expected)
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			path: bson.M{"$concatArrays": bson.A{
				bson.M{"$slice": bson.A{field, index}},
				bson.M{"$slice": bson.A{field, index + 1, bson.M{"$size": field}}},
			}},
		}}},
	}

	res, err := r.coll.UpdateOne(ctx, filter, pipeline)
	if err != nil {
		r.Log.Error("failed to remove dose entry", "error", err, "user_id", userID, "year", year)
		return fmt.Errorf("failed to remove dose entry: %w", err)
	}

	if res.MatchedCount == 0 {
		return r.explainMiss(ctx, userID, year, index)
	}

	// пустая корзина равна отсутствующей, но в документе её не оставляем
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"userID": userID, path: bson.M{"$size": 0}},
		bson.M{"$unset": bson.M{path: ""}},
	)
	if err != nil {
		r.Log.Warn("failed to unset empty year", "error", err, "user_id", userID, "year", year)
	}
	return nil
}

// explainMiss отличает отсутствующую запись от изменившейся
func (r *MongoRepository) explainMiss(ctx context.Context, userID int64, year string, index int) error {
	log, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if index >= len(log.Entries(year)) {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *MongoRepository) ResetYear(ctx context.Context, userID int64, year string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userID": userID},
		bson.M{"$unset": bson.M{bucketPath(year): ""}},
	)
	if err != nil {
		r.Log.Error("failed to reset year", "error", err, "user_id", userID, "year", year)
		return fmt.Errorf("failed to reset year: %w", err)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"userID": userID}); err != nil {
		r.Log.Error("failed to delete dose log", "error", err, "user_id", userID)
		return fmt.Errorf("failed to delete dose log: %w", err)
	}
	return nil
}

// Ping для healthcheck
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func bucketPath(year string) string {
	return "doses." + year
}
