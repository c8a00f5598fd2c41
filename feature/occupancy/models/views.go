package models

// BedView is a bed together with its current occupant, if any.
type BedView struct {
	ID      uint     `json:"id"`
	Number  string   `json:"number"`
	Patient *Patient `json:"patient,omitempty"`
}

// RoomView is the occupancy picture of one room.
type RoomView struct {
	ID     uint      `json:"id"`
	Number string    `json:"number"`
	Name   string    `json:"name"`
	Beds   []BedView `json:"beds"`
}
