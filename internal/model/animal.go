package model

import "time"

// Animal is a single livestock record belonging to a farm.
//
// Fields:
//  ID        – primary identifier of the animal.
//  FarmID    – owning farm.
//  TagNumber – physical ear-tag or collar number, unique per farm.
//  Name      – optional given name.
//  Species   – e.g. "cattle", "sheep", "goat".
//  Breed     – breed name, free text.
//  Sex       – "male" or "female".
//  BirthDate – date of birth (nil when unknown).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Animal struct {
	ID        uint64     `json:"id"`
	FarmID    uint64     `json:"farm_id"`
	TagNumber string     `json:"tag_number"`
	Name      string     `json:"name,omitempty"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed,omitempty"`
	Sex       string     `json:"sex"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
