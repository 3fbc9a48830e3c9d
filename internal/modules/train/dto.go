package train

import "railway/internal/domain"

// SearchQuery is bound from the query string of GET /trains/search.
type SearchQuery struct {
	From       string `form:"from" json:"from" validate:"required"`
	To         string `form:"to" json:"to" validate:"required"`
	Date       string `form:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Class      string `form:"class" json:"class"`
	Passengers int    `form:"passengers" json:"passengers" validate:"omitempty,min=1,max=6"`
}

type ClassAvailability struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Price     int64  `json:"price"`
	Status    string `json:"status"`
	Bookable  bool   `json:"bookable"`
}

type SearchResult struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Name          string              `json:"name"`
	From          string              `json:"from"`
	To            string              `json:"to"`
	DepartureTime string              `json:"departure_time"`
	ArrivalTime   string              `json:"arrival_time"`
	Duration      string              `json:"duration"`
	Distance      string              `json:"distance"`
	Days          []string            `json:"days"`
	Classes       []ClassAvailability `json:"classes"`
	MinFare       int64               `json:"min_fare"`
}

type ClassRequest struct {
	Code      string `json:"code" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Available int    `json:"available" validate:"gte=0"`
	Price     int64  `json:"price" validate:"gt=0"`
}

// TrainRequest creates or replaces a train. Missing days mean daily service.
type TrainRequest struct {
	Number        string         `json:"number" validate:"required"`
	Name          string         `json:"name" validate:"required"`
	From          string         `json:"from" validate:"required"`
	To            string         `json:"to" validate:"required"`
	DepartureTime string         `json:"departure_time"`
	ArrivalTime   string         `json:"arrival_time"`
	Duration      string         `json:"duration"`
	Distance      string         `json:"distance"`
	Classes       []ClassRequest `json:"classes" validate:"required,min=1,dive"`
	Days          []string       `json:"days" validate:"omitempty,dive,oneof=Mon Tue Wed Thu Fri Sat Sun"`
}

func (r TrainRequest) classes() []domain.TravelClass {
	out := make([]domain.TravelClass, 0, len(r.Classes))
	for _, c := range r.Classes {
		out = append(out, domain.TravelClass{
			Code:      domain.NormalizeClassCode(c.Code),
			Name:      c.Name,
			Available: c.Available,
			Price:     c.Price,
		})
	}
	return out
}

func (r TrainRequest) days() []string {
	if len(r.Days) == 0 {
		return append([]string(nil), domain.Weekdays...)
	}
	// keep calendar order, drop repeats
	seen := make(map[string]bool, len(r.Days))
	for _, d := range r.Days {
		seen[d] = true
	}
	out := make([]string, 0, len(seen))
	for _, d := range domain.Weekdays {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}
