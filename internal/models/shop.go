package models

import "time"

// ShopFeatures флаги услуг мастерской.
type ShopFeatures struct {
	InStoreShopping bool `json:"in_store_shopping"`
	KerbsidePickup  bool `json:"kerbside_pickup"`
	Delivery        bool `json:"delivery"`
	InStorePickup   bool `json:"in_store_pickup"`
}

// Shop запись справочника ремонтных мастерских. С заявками не связана,
// используется только для информационной выдачи по городу.
type Shop struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Rating          float64      `json:"rating"`
	ReviewCount     int          `json:"review_count"`
	Category        string       `json:"category"`
	Address         string       `json:"address"`
	Phone           string       `json:"phone,omitempty"`
	City            string       `json:"city"`
	State           string       `json:"state,omitempty"`
	Pincode         string       `json:"pincode,omitempty"`
	OpeningHours    string       `json:"opening_hours,omitempty"`
	ClosingHours    string       `json:"closing_hours,omitempty"`
	Services        []string     `json:"services,omitempty"`
	Description     string       `json:"description,omitempty"`
	YearsInBusiness string       `json:"years_in_business,omitempty"`
	Features        ShopFeatures `json:"features"`
	CreatedAt       time.Time    `json:"created_at"`
}

// DummyShop используется для приёма данных мастерской из JSON-запроса.
type DummyShop struct {
	Name            string       `json:"name" validate:"required"`
	Rating          float64      `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount     int          `json:"review_count" validate:"omitempty,gte=0"`
	Category        string       `json:"category" validate:"required"`
	Address         string       `json:"address" validate:"required"`
	Phone           string       `json:"phone,omitempty"`
	City            string       `json:"city" validate:"required"`
	State           string       `json:"state,omitempty"`
	Pincode         string       `json:"pincode,omitempty"`
	OpeningHours    string       `json:"opening_hours,omitempty"`
	ClosingHours    string       `json:"closing_hours,omitempty"`
	Services        []string     `json:"services,omitempty"`
	Description     string       `json:"description,omitempty"`
	YearsInBusiness string       `json:"years_in_business,omitempty"`
	Features        ShopFeatures `json:"features"`
}
