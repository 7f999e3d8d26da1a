package store

import (
	"time"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

// dbRoom is the gorm model backing the Rooms table.
type dbRoom struct {
	RoomID   int64  `gorm:"column:room_id;primaryKey"`
	Capacity int    `gorm:"column:capacity;not null"`
	RoomType string `gorm:"column:room_type;index"`
	Location string `gorm:"column:location"`
}

func (dbRoom) TableName() string { return "rooms" }

func (r dbRoom) toType() types.Room {
	return types.Room{RoomID: r.RoomID, Capacity: r.Capacity, RoomType: r.RoomType, Location: r.Location}
}

// dbBookingRecord is the gorm model backing the BookingHistory table.
type dbBookingRecord struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RoomID   int64  `gorm:"column:room_id;index:idx_booking_room_slot_date,priority:1;index:idx_booking_room_date_slot,priority:1"`
	Date     string `gorm:"column:date;index:idx_booking_room_date_slot,priority:2"`
	Slot     string `gorm:"column:time_slot;index:idx_booking_room_slot_date,priority:2;index:idx_booking_room_date_slot,priority:3"`
	Occupied int    `gorm:"column:occupied;not null"`
	RoomType string `gorm:"column:room_type"`
}

func (dbBookingRecord) TableName() string { return "booking_history" }

func (b dbBookingRecord) toType() types.BookingRecord {
	return types.BookingRecord{RoomID: b.RoomID, Date: b.Date, Slot: b.Slot, Occupied: b.Occupied, RoomType: b.RoomType}
}

// dbRequest is the gorm model backing the Requests table.
type dbRequest struct {
	RequestID         int64   `gorm:"column:request_id;primaryKey;autoIncrement"`
	RequestedCapacity int     `gorm:"column:requested_capacity;not null"`
	RequestedDate     string  `gorm:"column:requested_date;index:idx_requests_date_slot_status,priority:1"`
	RequestedTimeSlot string  `gorm:"column:requested_time_slot;index:idx_requests_date_slot_status,priority:2"`
	PriorityWeight    float64 `gorm:"column:priority_weight;not null;default:1.0"`
	StakeholderID     string  `gorm:"column:stakeholder_id;not null;default:UNKNOWN"`
	Status            string  `gorm:"column:status;index:idx_requests_date_slot_status,priority:3;not null;default:PENDING"`
}

func (dbRequest) TableName() string { return "requests" }

func (r dbRequest) toType() types.Request {
	return types.Request{
		RequestID:         r.RequestID,
		RequestedCapacity: r.RequestedCapacity,
		RequestedDate:     r.RequestedDate,
		RequestedTimeSlot: r.RequestedTimeSlot,
		PriorityWeight:    r.PriorityWeight,
		StakeholderID:     r.StakeholderID,
		Status:            types.RequestStatus(r.Status),
	}
}

// dbIdlePrediction is the gorm model backing the Predictions table. This
// table is append-only; "latest wins" is enforced by query order, not by
// overwrite.
type dbIdlePrediction struct {
	PredictionID    int64     `gorm:"column:prediction_id;primaryKey;autoIncrement"`
	RoomID          int64     `gorm:"column:room_id;index:idx_predictions_room_date_slot,priority:1"`
	Date            string    `gorm:"column:date;index:idx_predictions_room_date_slot,priority:2"`
	Slot            string    `gorm:"column:time_slot;index:idx_predictions_room_date_slot,priority:3"`
	IdleProbability float64   `gorm:"column:idle_probability;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
}

func (dbIdlePrediction) TableName() string { return "predictions" }

func (p dbIdlePrediction) toType() types.IdlePrediction {
	return types.IdlePrediction{
		PredictionID:    p.PredictionID,
		RoomID:          p.RoomID,
		Date:            p.Date,
		Slot:            p.Slot,
		IdleProbability: p.IdleProbability,
		CreatedAt:       p.CreatedAt,
	}
}

// dbAllocationLog is the gorm model backing the AllocationLogs table.
type dbAllocationLog struct {
	LogID           int64     `gorm:"column:log_id;primaryKey;autoIncrement"`
	RequestID       int64     `gorm:"column:request_id;index"`
	RoomID          int64     `gorm:"column:room_id;index"`
	AllocationScore float64   `gorm:"column:allocation_score;not null"`
	AllocatedAt     time.Time `gorm:"column:allocated_at;not null"`
}

func (dbAllocationLog) TableName() string { return "allocation_logs" }

func (a dbAllocationLog) toType() types.AllocationLog {
	return types.AllocationLog{
		LogID:           a.LogID,
		RequestID:       a.RequestID,
		RoomID:          a.RoomID,
		AllocationScore: a.AllocationScore,
		AllocatedAt:     a.AllocatedAt,
	}
}

// dbDemandForecast is the gorm model backing the DemandForecastLogs table.
// One row per time_slot; re-computation replaces the existing row.
type dbDemandForecast struct {
	TimeSlot             string  `gorm:"column:time_slot;primaryKey"`
	HistoricalCount      int     `gorm:"column:historical_count;not null"`
	DemandIntensityScore float64 `gorm:"column:demand_intensity_score;not null"`
}

func (dbDemandForecast) TableName() string { return "demand_forecast_logs" }

func (d dbDemandForecast) toType() types.DemandForecast {
	return types.DemandForecast{
		TimeSlot:             d.TimeSlot,
		HistoricalCount:      d.HistoricalCount,
		DemandIntensityScore: d.DemandIntensityScore,
	}
}

// dbModelMetadata is the gorm model backing the singleton model-metadata
// table; ID is always 1 and a new training overwrites the row.
type dbModelMetadata struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	ModelType    string    `gorm:"column:model_type;not null"`
	ModelVersion string    `gorm:"column:model_version;not null"`
	TrainedAt    time.Time `gorm:"column:trained_at;not null"`
	TrainingRows int       `gorm:"column:training_rows;not null"`
}

func (dbModelMetadata) TableName() string { return "model_metadata" }

func (m dbModelMetadata) toType() types.ModelMetadata {
	return types.ModelMetadata{
		ModelType:    m.ModelType,
		ModelVersion: m.ModelVersion,
		TrainedAt:    m.TrainedAt,
		TrainingRows: m.TrainingRows,
	}
}
