package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"github.com/rs/zerolog/log"
)

// seedRoomSpecs describes the fixed fleet of rooms the synthetic seeder
// creates. Capacities and types are varied so that pruning by capacity has
// something to bite on.
var seedRoomSpecs = []struct {
	capacity int
	roomType string
	location string
}{
	{capacity: 4, roomType: "huddle", location: "floor-1"},
	{capacity: 4, roomType: "huddle", location: "floor-2"},
	{capacity: 8, roomType: "meeting", location: "floor-1"},
	{capacity: 8, roomType: "meeting", location: "floor-2"},
	{capacity: 8, roomType: "meeting", location: "floor-3"},
	{capacity: 15, roomType: "conference", location: "floor-1"},
	{capacity: 15, roomType: "conference", location: "floor-2"},
	{capacity: 20, roomType: "conference", location: "floor-3"},
	{capacity: 30, roomType: "auditorium", location: "floor-1"},
	{capacity: 35, roomType: "auditorium", location: "floor-2"},
	{capacity: 50, roomType: "hall", location: "ground"},
	{capacity: 60, roomType: "hall", location: "ground"},
}

// SeedIfEmpty idempotently populates Rooms and BookingHistory with
// deterministic synthetic data, skipping entirely when Rooms is already
// non-empty.
func (s *Store) SeedIfEmpty(ctx context.Context, cfg config.Synthetic) error {
	count, err := s.CountRooms(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debug().Msg("rooms already seeded, skipping")
		return nil
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))

	rooms := make([]types.Room, 0, len(seedRoomSpecs))
	for i, spec := range seedRoomSpecs {
		room, err := s.CreateRoom(ctx, types.Room{
			RoomID:   int64(i + 1),
			Capacity: spec.capacity,
			RoomType: spec.roomType,
			Location: spec.location,
		})
		if err != nil {
			return fmt.Errorf("failed to seed room %d: %w", i+1, err)
		}
		rooms = append(rooms, room)
	}

	slots := cfg.TimeSlots
	if len(slots) == 0 {
		slots = []string{"09-11", "11-13", "13-15", "15-17"}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	records := make([]types.BookingRecord, 0, len(rooms)*len(slots)*cfg.SeedDays)
	for d := cfg.SeedDays; d >= 1; d-- {
		date := today.AddDate(0, 0, -d)
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
		prob := cfg.WeekdayOccupiedProbability
		if weekend {
			prob = cfg.WeekendOccupiedProbability
		}
		dateStr := date.Format(dateLayout)

		for _, room := range rooms {
			for _, slot := range slots {
				occupied := 0
				if rng.Float64() < prob {
					occupied = 1
				}
				records = append(records, types.BookingRecord{
					RoomID:   room.RoomID,
					Date:     dateStr,
					Slot:     slot,
					Occupied: occupied,
					RoomType: room.RoomType,
				})
			}
		}
	}

	if err := s.CreateBookingRecords(ctx, records); err != nil {
		return fmt.Errorf("failed to seed booking history: %w", err)
	}

	log.Info().Int("rooms", len(rooms)).Int("booking_records", len(records)).Msg("seeded synthetic data")
	return nil
}
