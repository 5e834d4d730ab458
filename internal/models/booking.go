package models

import "time"

// Статусы заявки на ремонт. Переходы из pending только вперед:
// pending -> {confirmed, cancelled}, дальше confirmed -> in_progress -> completed
// силами администратора.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus сообщает, входит ли строка в перечень статусов заявки.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking представляет одну заявку на выездной ремонт телефона.
//
// Поля OTPCode и OTPExpiresAt заполнены только пока подтверждение по почте
// не пройдено; после успешной проверки оба очищаются, EmailVerified = true.
type Booking struct {
	ID             int64      `json:"-"`
	BookingNumber  string     `json:"booking_number"` // Человекочитаемый номер, назначается один раз
	UserUID        string     `json:"-"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Address        string     `json:"address"`
	BrandName      string     `json:"brand_name"`
	DeviceModel    string     `json:"device_model"`
	Issue          string     `json:"issue"`
	Description    string     `json:"description,omitempty"`
	EstimatedPrice *int       `json:"estimated_price,omitempty"` // Оценка клиента, сервер не пересчитывает
	PreferredDate  time.Time  `json:"preferred_date"`
	PreferredTime  string     `json:"preferred_time"`
	Status         string     `json:"status"`
	EmailVerified  bool       `json:"email_verified"`
	OTPCode        *string    `json:"-"` // Секретный код, клиенту не отдается
	OTPExpiresAt   *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AdminBooking заявка вместе с данными владельца для админского списка.
type AdminBooking struct {
	Booking
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
}

// DummyBooking используется для приёма данных заявки из JSON-запроса.
// Дата приходит строкой в формате 2006-01-02 и парсится вручную.
type DummyBooking struct {
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"required"`
	BrandName      string `json:"brand_name" validate:"required"`
	DeviceModel    string `json:"device_model" validate:"required"`
	Issue          string `json:"issue" validate:"required"`
	Description    string `json:"description,omitempty" validate:"omitempty"`
	EstimatedPrice *int   `json:"estimated_price,omitempty" validate:"omitempty,gt=0"`
	PreferredDate  string `json:"preferred_date" validate:"required"`
	PreferredTime  string `json:"preferred_time" validate:"required"`
}

// DummyBookingUpdate поля заявки, которые владелец может менять.
// Статус и поля подтверждения сюда не входят.
type DummyBookingUpdate struct {
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Address        string `json:"address" validate:"required"`
	BrandName      string `json:"brand_name" validate:"required"`
	DeviceModel    string `json:"device_model" validate:"required"`
	Issue          string `json:"issue" validate:"required"`
	Description    string `json:"description,omitempty" validate:"omitempty"`
	EstimatedPrice *int   `json:"estimated_price,omitempty" validate:"omitempty,gt=0"`
	PreferredDate  string `json:"preferred_date" validate:"required"`
	PreferredTime  string `json:"preferred_time" validate:"required"`
}

// ConfirmedNotice сообщение в очередь уведомлений о подтвержденной заявке.
type ConfirmedNotice struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	BookingNumber string `json:"booking_number"`
}
