package mongoadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
	domainerrors "cpindex/contexts/governance/cpi-engine/domain/errors"
)

const (
	delegateCollection = "delegate_data"
	historicCollection = "historic_cpi"
)

// Repository reads delegate snapshots and owns the persisted historic
// series in the CPI document store.
type Repository struct {
	database *mongo.Database
	logger   *slog.Logger
}

func NewRepository(database *mongo.Database, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		database: database,
		logger:   logger,
	}
}

func (r *Repository) ListSnapshotDates(ctx context.Context) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$date"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "date", Value: "$_id"}}}},
	}

	cursor, err := r.database.Collection(delegateCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, r.storeError("cpi_repo_list_dates_failed", "aggregate snapshot dates", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date time.Time `bson:"date"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.storeError("cpi_repo_list_dates_failed", "decode snapshot dates", err)
	}

	dates := make([]string, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, row.Date.UTC().Format("2006-01-02"))
	}
	return dates, nil
}

func (r *Repository) DelegatesForDate(ctx context.Context, date string) ([]entities.DelegateSnapshot, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetProjection(bson.D{
		{Key: "voting_power", Value: 1},
		{Key: "delegate_id", Value: 1},
		{Key: "_id", Value: 0},
	})
	cursor, err := r.database.Collection(delegateCollection).Find(ctx, bson.D{{Key: "date", Value: day}}, opts)
	if err != nil {
		return nil, r.storeError("cpi_repo_delegates_failed", "find delegate records", err, "date", date)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		DelegateID  string         `bson:"delegate_id"`
		VotingPower map[string]any `bson:"voting_power"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.storeError("cpi_repo_delegates_failed", "decode delegate records", err, "date", date)
	}

	records := make([]entities.DelegateSnapshot, 0, len(rows))
	for _, row := range rows {
		power := make(map[string]string, len(row.VotingPower))
		for seat, value := range row.VotingPower {
			power[seat] = powerString(value)
		}
		records = append(records, entities.DelegateSnapshot{
			DelegateID:  row.DelegateID,
			VotingPower: power,
		})
	}
	return records, nil
}

func (r *Repository) ByDate(ctx context.Context, date string) (entities.DateResult, error) {
	day, err := parseDay(date)
	if err != nil {
		return entities.DateResult{}, err
	}

	var row historicModel
	err = r.database.Collection(historicCollection).
		FindOne(ctx, bson.D{{Key: "date", Value: day}}).
		Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entities.DateResult{}, domainerrors.ErrDateNotFound
		}
		return entities.DateResult{}, r.storeError("cpi_repo_historic_by_date_failed", "find historic record", err, "date", date)
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context) ([]entities.DateResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.database.Collection(historicCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, r.storeError("cpi_repo_historic_list_failed", "find historic records", err)
	}
	defer cursor.Close(ctx)

	var rows []historicModel
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.storeError("cpi_repo_historic_list_failed", "decode historic records", err)
	}

	results := make([]entities.DateResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toEntity())
	}
	return results, nil
}

func (r *Repository) Upsert(ctx context.Context, result entities.DateResult) error {
	day, err := parseDay(result.Date)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	_, err = r.database.Collection(historicCollection).
		ReplaceOne(ctx, bson.D{{Key: "date", Value: day}}, historicModelFromEntity(day, result), opts)
	if err != nil {
		return r.storeError("cpi_repo_historic_upsert_failed", "upsert historic record", err, "date", result.Date)
	}
	return nil
}

type historicModel struct {
	Date               time.Time `bson:"date"`
	CPI                float64   `bson:"cpi"`
	ActiveCouncils     []string  `bson:"active_councils"`
	CouncilPercentages struct {
		Active              float64            `bson:"active"`
		Inactive            float64            `bson:"inactive"`
		Redistributed       map[string]float64 `bson:"redistributed"`
		OriginalPercentages map[string]float64 `bson:"original_percentages"`
	} `bson:"council_percentages"`
	ActiveRedistributed map[string]float64 `bson:"active_redistributed"`
	Filename            string             `bson:"filename"`
}

func historicModelFromEntity(day time.Time, result entities.DateResult) historicModel {
	row := historicModel{
		Date:                day,
		CPI:                 result.CPI,
		ActiveCouncils:      result.ActiveCouncils,
		ActiveRedistributed: result.ActiveRedistributed,
		Filename:            result.Filename,
	}
	row.CouncilPercentages.Active = result.CouncilPercentages.Active
	row.CouncilPercentages.Inactive = result.CouncilPercentages.Inactive
	row.CouncilPercentages.Redistributed = result.CouncilPercentages.Redistributed
	row.CouncilPercentages.OriginalPercentages = result.CouncilPercentages.OriginalPercentages
	return row
}

func (m historicModel) toEntity() entities.DateResult {
	date := m.Date.UTC().Format("2006-01-02")
	filename := m.Filename
	if filename == "" {
		filename = date
	}
	return entities.DateResult{
		Date:           date,
		CPI:            m.CPI,
		ActiveCouncils: m.ActiveCouncils,
		CouncilPercentages: entities.Redistribution{
			Active:              m.CouncilPercentages.Active,
			Inactive:            m.CouncilPercentages.Inactive,
			Redistributed:       m.CouncilPercentages.Redistributed,
			OriginalPercentages: m.CouncilPercentages.OriginalPercentages,
		},
		ActiveRedistributed: m.ActiveRedistributed,
		Filename:            filename,
	}
}

// parseDay pins a YYYY-MM-DD string to UTC midnight, matching how
// snapshot documents key their date field.
func parseDay(date string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid snapshot date %q: %w", date, err)
	}
	return day, nil
}

// powerString normalizes the mixed numeric encodings found in snapshot
// documents to the string form the lenient domain coercion expects.
func powerString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case primitive.Decimal128:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (r *Repository) storeError(event string, op string, err error, attrs ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/cpi-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	r.logger.Error("cpi store operation failed", fields...)
	return fmt.Errorf("%s: %w: %v", op, domainerrors.ErrUpstreamUnavailable, err)
}
