package handlers

import (
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
)

type startAtRequest struct {
	Hours   int    `json:"hours"   validate:"gte=0,lt=24"`
	Minutes int    `json:"minutes" validate:"gte=0,lt=60"`
	AmPm    string `json:"ampm"    validate:"omitempty,oneof=am pm AM PM"`
}

type startRequest struct {
	Home             string          `json:"home"              validate:"required"`
	Away             string          `json:"away"              validate:"required,nefield=Home"`
	CountdownMinutes int             `json:"countdown_minutes" validate:"gte=0,lte=1440"`
	StartAt          *startAtRequest `json:"start_at"          validate:"omitempty"`
}

type clockRequest struct {
	Minutes int `json:"minutes" validate:"gte=0,lte=120"`
	Seconds int `json:"seconds" validate:"gte=0,lt=60"`
}

func (c clockRequest) duration() time.Duration {
	return time.Duration(c.Minutes)*time.Minute + time.Duration(c.Seconds)*time.Second
}

type scoreRequest struct {
	Delta int `json:"delta" validate:"gte=-100,lte=100"`
}

type starPassRequest struct {
	StarPass *bool `json:"starPass" validate:"required"`
}

type penaltyRequest struct {
	Skater string `json:"skater" validate:"required,max=4"`
	Code   string `json:"code"   validate:"required,len=1,penalty"`
}

type tripRequest struct {
	Trip   int `json:"trip"   validate:"gte=1,lte=50"`
	Points int `json:"points" validate:"gte=0,lte=5"`
}

type jamUpdateRequest struct {
	Lead     *bool        `json:"lead"`
	Lost     *bool        `json:"lost"`
	Call     *bool        `json:"call"`
	StarPass *bool        `json:"starpass"`
	Trip     *tripRequest `json:"trip" validate:"omitempty"`
}

func (j jamUpdateRequest) update() gamestate.JamUpdate {
	u := gamestate.JamUpdate{Lead: j.Lead, Lost: j.Lost, Call: j.Call, StarPass: j.StarPass}
	if j.Trip != nil {
		u.Trip = &gamestate.TripPoints{Trip: j.Trip.Trip, Points: j.Trip.Points}
	}
	return u
}
