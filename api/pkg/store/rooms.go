package store

import (
	"context"
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

// CreateRoom inserts a new room. capacity must be > 0.
func (s *Store) CreateRoom(ctx context.Context, room types.Room) (types.Room, error) {
	if room.Capacity <= 0 {
		return types.Room{}, fmt.Errorf("capacity must be positive")
	}
	rec := dbRoom{RoomID: room.RoomID, Capacity: room.Capacity, RoomType: room.RoomType, Location: room.Location}
	if err := s.gdb.WithContext(ctx).Create(&rec).Error; err != nil {
		return types.Room{}, fmt.Errorf("failed to create room: %w", err)
	}
	return rec.toType(), nil
}

// ListRooms returns every room, ordered by room_id.
func (s *Store) ListRooms(ctx context.Context) ([]types.Room, error) {
	var recs []dbRoom
	if err := s.gdb.WithContext(ctx).Order("room_id asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	rooms := make([]types.Room, 0, len(recs))
	for _, r := range recs {
		rooms = append(rooms, r.toType())
	}
	return rooms, nil
}

// GetRoom looks up a room by id.
func (s *Store) GetRoom(ctx context.Context, roomID int64) (types.Room, error) {
	var rec dbRoom
	err := s.gdb.WithContext(ctx).First(&rec, "room_id = ?", roomID).Error
	if err != nil {
		return types.Room{}, translateNotFound(err)
	}
	return rec.toType(), nil
}

// CountRooms returns the total number of rooms, used to decide whether the
// startup seeder should run.
func (s *Store) CountRooms(ctx context.Context) (int64, error) {
	var n int64
	if err := s.gdb.WithContext(ctx).Model(&dbRoom{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return n, nil
}
