package usecase

import "github.com/rolltable/rolltable/internal/domain"

// reapEmptyRooms splits rooms into survivors and rooms whose EmptySince
// marker is older than EmptyRoomTTL. Pure and idempotent; survivors keep
// their order. Applied on every registry read.
func reapEmptyRooms(rooms []domain.Room, now int64) (kept, pruned []domain.Room) {
	ttl := EmptyRoomTTL.Milliseconds()

	for _, room := range rooms {
		if room.EmptySince != nil && now-*room.EmptySince > ttl {
			pruned = append(pruned, room)
			continue
		}
		kept = append(kept, room)
	}

	return kept, pruned
}
