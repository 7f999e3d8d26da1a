// Package predictor trains a binary occupancy classifier from booking
// history and serves single-point idle-probability inferences.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type predictiveModel interface {
	predictProb(features []float64) float64
}

// Predictor trains and serves the idle-probability classifier. Training is
// mutually exclusive with inference via an RWMutex: Train holds the write
// lock for the duration of the fit, Predict holds the read lock only while
// copying the current model/vocabulary state.
type Predictor struct {
	store *store.Store
	cfg   config.Prediction

	mu          sync.RWMutex
	model       predictiveModel
	slots       vocabulary
	roomTypes   vocabulary
	globalMean  float64
	globalMeanOK bool
	modelType   string
}

// New constructs an untrained Predictor; call Train before Predict.
func New(st *store.Store, cfg config.Prediction) *Predictor {
	return &Predictor{store: st, cfg: cfg}
}

// Train loads the entire booking history, computes causal features, and
// fits a new model in place of whatever was previously trained.
func (p *Predictor) Train(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.store.ListBookingHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load booking history: %w", err)
	}
	if len(rows) < p.cfg.MinTrainingRows {
		return fmt.Errorf("%w: %d training rows available, %d required", ErrModelNotReady, len(rows), p.cfg.MinTrainingRows)
	}

	globalMean, globalOK := meanOccupied(rows)

	slotsSeen := map[string]struct{}{}
	roomTypesSeen := map[string]struct{}{}
	for _, r := range rows {
		slotsSeen[r.Slot] = struct{}{}
		roomTypesSeen[r.RoomType] = struct{}{}
	}
	slots := newVocabulary(slotsSeen)
	roomTypes := newVocabulary(roomTypesSeen)
	dim := featureDim(slots, roomTypes)

	type groupEntry struct {
		date     string
		occupied int
	}
	groups := map[string][]groupEntry{}

	x := mat.NewDense(len(rows), dim, nil)
	y := make([]float64, len(rows))
	ones, zeros := 0, 0

	for i, r := range rows {
		key := fmt.Sprintf("%d|%s", r.RoomID, r.Slot)
		prior := groups[key]

		histFreq := globalMean
		if len(prior) > 0 {
			sum := 0
			for _, e := range prior {
				sum += e.occupied
			}
			histFreq = float64(sum) / float64(len(prior))
		} else if !globalOK {
			histFreq = p.cfg.DefaultOccupancyProbability
		}

		rollingAvg := histFreq
		if windowStart, werr := dateMinusDays(r.Date, p.cfg.RollingWindowDays); werr == nil {
			sum, count := 0, 0
			for _, e := range prior {
				if e.date >= windowStart && e.date < r.Date {
					sum += e.occupied
					count++
				}
			}
			if count > 0 {
				rollingAvg = float64(sum) / float64(count)
			}
		}

		dow, derr := dayOfWeek(r.Date)
		if derr != nil {
			dow = 0
		}

		vec := featureVector(featureRow{
			dayOfWeek:  dow,
			slot:       r.Slot,
			roomType:   r.RoomType,
			histFreq:   histFreq,
			rollingAvg: rollingAvg,
		}, slots, roomTypes)
		x.SetRow(i, vec)
		y[i] = float64(r.Occupied)
		if r.Occupied == 1 {
			ones++
		} else {
			zeros++
		}

		groups[key] = append(prior, groupEntry{date: r.Date, occupied: r.Occupied})
	}

	var model predictiveModel
	var modelType string
	if ones > 0 && zeros > 0 {
		lr := newLogisticModel(dim, p.cfg.RandomState)
		lr.fit(x, y, p.cfg.ModelMaxIter)
		model = lr
		modelType = "logistic_regression"
	} else {
		mostFrequent := 0.0
		if ones >= zeros {
			mostFrequent = 1.0
		}
		model = &constantModel{probability: mostFrequent}
		modelType = "most_frequent_class"
		log.Warn().Msg("training data contains only one class, falling back to most-frequent-class constant predictor")
	}

	p.model = model
	p.modelType = modelType
	p.slots = slots
	p.roomTypes = roomTypes
	p.globalMean = globalMean
	p.globalMeanOK = globalOK

	return p.store.SaveModelMetadata(ctx, types.ModelMetadata{
		ModelType:    modelType,
		ModelVersion: p.cfg.ModelVersion,
		TrainedAt:    time.Now().UTC(),
		TrainingRows: len(rows),
	})
}

func meanOccupied(rows []types.BookingRecord) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	occupied := make([]float64, len(rows))
	for i, r := range rows {
		occupied[i] = float64(r.Occupied)
	}
	return stat.Mean(occupied, nil), true
}

var dateLayout = "2006-01-02"

func dateMinusDays(date string, days int) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -days).Format(dateLayout), nil
}

var defaultSlotRegex = regexp.MustCompile(`^\d{2}-\d{2}$`)

func (p *Predictor) validate(roomID int64, date, slot string) error {
	if roomID <= 0 {
		return &ValidationError{Reason: "room_id must be positive"}
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("date %q is not in YYYY-MM-DD format", date)}
	}

	slotRegex := defaultSlotRegex
	if p.cfg.TimeSlotRegex != "" {
		if re, err := regexp.Compile(p.cfg.TimeSlotRegex); err == nil {
			slotRegex = re
		}
	}
	if !slotRegex.MatchString(slot) {
		return &ValidationError{Reason: fmt.Sprintf("time_slot %q does not match %s", slot, slotRegex.String())}
	}

	parts := strings.SplitN(slot, "-", 2)
	if len(parts) != 2 {
		return &ValidationError{Reason: fmt.Sprintf("time_slot %q is malformed", slot)}
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return &ValidationError{Reason: fmt.Sprintf("time_slot %q hours are not numeric", slot)}
	}
	if start < 0 || start > 23 || end < 0 || end > 23 {
		return &ValidationError{Reason: fmt.Sprintf("time_slot %q hours must be within 0-23", slot)}
	}
	if start >= end {
		return &ValidationError{Reason: fmt.Sprintf("time_slot %q start hour must be before end hour", slot)}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Predict validates the inputs, assembles the feature row for (room, date,
// slot), and returns the idle probability and confidence. When persist is
// true, the prediction is appended to the store's append-only audit stream.
func (p *Predictor) Predict(ctx context.Context, roomID int64, date, slot string, persist bool) (types.PredictionResult, error) {
	if err := p.validate(roomID, date, slot); err != nil {
		return types.PredictionResult{}, err
	}

	room, err := p.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.PredictionResult{}, ErrRoomNotFound
		}
		return types.PredictionResult{}, fmt.Errorf("failed to look up room: %w", err)
	}

	p.mu.RLock()
	model := p.model
	slots := p.slots
	roomTypes := p.roomTypes
	globalMean := p.globalMean
	globalMeanOK := p.globalMeanOK
	p.mu.RUnlock()

	if model == nil {
		return types.PredictionResult{}, ErrModelNotReady
	}

	histFreq, histOK, err := p.store.HistoricalOccupancyFrequency(ctx, roomID, slot)
	if err != nil {
		return types.PredictionResult{}, fmt.Errorf("failed to load historical occupancy frequency: %w", err)
	}
	rollingAvg, rollingOK, err := p.store.RollingWindowOccupancyAverage(ctx, roomID, slot, date, p.cfg.RollingWindowDays)
	if err != nil {
		return types.PredictionResult{}, fmt.Errorf("failed to load rolling window average: %w", err)
	}

	resolvedHist := cascade(histFreq, histOK, globalMean, globalMeanOK, p.cfg.DefaultOccupancyProbability)
	resolvedRolling := rollingAvg
	if !rollingOK {
		resolvedRolling = resolvedHist
	}

	dow, err := dayOfWeek(date)
	if err != nil {
		dow = 0
	}

	vec := featureVector(featureRow{
		dayOfWeek:  dow,
		slot:       slot,
		roomType:   room.RoomType,
		histFreq:   resolvedHist,
		rollingAvg: resolvedRolling,
	}, slots, roomTypes)

	pOccupied := model.predictProb(vec)
	idle := clamp01(1 - pOccupied)
	confidence := clamp01(abs(idle-0.5) * 2)

	result := types.PredictionResult{
		RoomID:          roomID,
		Date:            date,
		TimeSlot:        slot,
		IdleProbability: idle,
		Confidence:      confidence,
	}

	if persist {
		_, err := p.store.CreatePrediction(ctx, types.IdlePrediction{
			RoomID:          roomID,
			Date:            date,
			Slot:            slot,
			IdleProbability: idle,
			CreatedAt:       time.Now().UTC(),
		})
		if err != nil {
			return types.PredictionResult{}, fmt.Errorf("failed to persist prediction: %w", err)
		}
	}

	return result, nil
}

func cascade(value float64, ok bool, fallback float64, fallbackOK bool, def float64) float64 {
	if ok {
		return value
	}
	if fallbackOK {
		return fallback
	}
	return def
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// IsReady reports whether a model has been trained.
func (p *Predictor) IsReady() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil
}
