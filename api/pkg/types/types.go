// Package types holds the value types shared across the store, predictor,
// allocator, simulator, and workflow packages. Nothing in this package
// touches persistence or business rules.
package types

import "time"

// RequestStatus is the lifecycle state of a Request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusAllocated RequestStatus = "ALLOCATED"
)

// UnknownStakeholder is the default stakeholder_id used when a caller does
// not supply one.
const UnknownStakeholder = "UNKNOWN"

// Room is an immutable bookable space.
type Room struct {
	RoomID   int64  `json:"room_id"`
	Capacity int    `json:"capacity"`
	RoomType string `json:"room_type"`
	Location string `json:"location,omitempty"`
}

// BookingRecord is one historical observation of a room's occupancy during a
// slot. The (room_id, date, slot) triple may repeat across history.
type BookingRecord struct {
	RoomID   int64  `json:"room_id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Slot     string `json:"time_slot"`
	Occupied int    `json:"occupied"` // 0 or 1
	RoomType string `json:"room_type"`
}

// Request is a pending or allocated room request.
type Request struct {
	RequestID          int64         `json:"request_id"`
	RequestedCapacity  int           `json:"requested_capacity"`
	RequestedDate      string        `json:"requested_date"`
	RequestedTimeSlot  string        `json:"requested_time_slot"`
	PriorityWeight     float64       `json:"priority_weight"`
	StakeholderID      string        `json:"stakeholder_id"`
	Status             RequestStatus `json:"status"`
}

// IdlePrediction is one inference of a room's idle probability for a slot.
type IdlePrediction struct {
	PredictionID    int64     `json:"prediction_id"`
	RoomID          int64     `json:"room_id"`
	Date            string    `json:"date"`
	Slot            string    `json:"time_slot"`
	IdleProbability float64   `json:"idle_probability"`
	CreatedAt       time.Time `json:"created_at"`
}

// AllocationLog records one approved (request -> room) pairing.
type AllocationLog struct {
	LogID            int64     `json:"log_id"`
	RequestID        int64     `json:"request_id"`
	RoomID           int64     `json:"room_id"`
	AllocationScore  float64   `json:"allocation_score"`
	AllocatedAt      time.Time `json:"allocated_at"`
}

// DemandForecast is the demand-intensity side output computed per slot.
type DemandForecast struct {
	TimeSlot             string  `json:"time_slot"`
	HistoricalCount      int     `json:"historical_count"`
	DemandIntensityScore float64 `json:"demand_intensity_score"`
}

// ModelMetadata describes the most recently trained predictor model.
type ModelMetadata struct {
	ModelType     string    `json:"model_type"`
	ModelVersion  string    `json:"model_version"`
	TrainedAt     time.Time `json:"trained_at"`
	TrainingRows  int       `json:"training_rows"`
}

// PredictionResult is the Predictor's inference output.
type PredictionResult struct {
	RoomID          int64   `json:"room_id"`
	Date            string  `json:"date"`
	TimeSlot        string  `json:"time_slot"`
	IdleProbability float64 `json:"idle_probability"`
	Confidence      float64 `json:"confidence_score"`
}

// AllocationDecision is one (room, request) pairing chosen by the Allocator.
type AllocationDecision struct {
	RequestID       int64   `json:"request_id"`
	RoomID          int64   `json:"room_id"`
	StakeholderID   string  `json:"stakeholder_id"`
	PriorityWeight  float64 `json:"priority_weight"`
	Score           float64 `json:"score"`
}

// AllocationResult is the full output of one Allocator.Solve call.
type AllocationResult struct {
	Decisions            []AllocationDecision `json:"allocations"`
	UnassignedRequestIDs []int64              `json:"unassigned_request_ids"`
	ObjectiveValue       float64              `json:"objective_value"`
	FairnessMetric       float64              `json:"fairness_metric"`
}

// AllocationConfig carries the tunable knobs for one Allocator.Solve call.
type AllocationConfig struct {
	IdleProbabilityThreshold float64
	StakeholderUsageCap      float64
	SolverMaxTimeSeconds     float64
	SolverRandomSeed         int64
	ObjectiveScale           int64
	CPSATWorkers             int
	ForecastHistoryDays      int
	PersistOutputs           bool
}

// ScenarioConstraints are the simulator's optional temporary overrides.
type ScenarioConstraints struct {
	IdleThreshold       *float64
	StakeholderCap      *float64
	CapacityOverride    map[int64]int
	PriorityAdjustment  map[string]float64
}

// SimulationMetrics is one scenario's (baseline or simulated) summary.
type SimulationMetrics struct {
	UtilizationRate               float64 `json:"utilization_rate"`
	RequestsSatisfied             int     `json:"requests_satisfied"`
	ObjectiveValue                float64 `json:"objective_value"`
	TotalRoomsUtilized            int     `json:"total_rooms_utilized"`
	AverageIdleProbabilityUtilized float64 `json:"average_idle_probability_utilized"`
	FairnessMetric                float64 `json:"fairness_metric"`
}

// SimulationDelta is the element-wise scenario-minus-baseline difference.
type SimulationDelta struct {
	UtilizationChange               float64 `json:"utilization_change"`
	RequestsSatisfiedChange         int     `json:"requests_satisfied_change"`
	ObjectiveValueChange            float64 `json:"objective_value_change"`
	TotalRoomsUtilizedChange        int     `json:"total_rooms_utilized_change"`
	AverageIdleProbabilityChange    float64 `json:"average_idle_probability_change"`
	FairnessMetricChange            float64 `json:"fairness_metric_change"`
}

// SimulationResult is the full output of one Simulator.Run call.
type SimulationResult struct {
	Baseline   SimulationMetrics `json:"baseline"`
	Simulation SimulationMetrics `json:"simulation"`
	Delta      SimulationDelta   `json:"delta"`
}
