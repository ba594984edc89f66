package filestore

import "time"

// Ids are stored as canonical uuid strings. Listing order uses the
// created_micros columns because sqlite compares times as text.

type serviceModel struct {
	ID         string  `gorm:"column:id;primaryKey"`
	Name       string  `gorm:"column:name;not null"`
	Price      int64   `gorm:"column:price;not null"`
	Active     bool    `gorm:"column:active;not null"`
	CategoryID *string `gorm:"column:category_id"`
}

func (serviceModel) TableName() string { return "services" }

type cartModel struct {
	CustomerID string    `gorm:"column:customer_id;primaryKey"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (cartModel) TableName() string { return "carts" }

type cartLineModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	CustomerID string `gorm:"column:customer_id;not null;uniqueIndex:idx_cart_item,priority:1"`
	ItemID     string `gorm:"column:item_id;not null;uniqueIndex:idx_cart_item,priority:2"`
	ItemName   string `gorm:"column:item_name;not null"`
	Quantity   int    `gorm:"column:quantity;not null"`
	UnitPrice  int64  `gorm:"column:unit_price;not null"`
	Position   int    `gorm:"column:position;not null"`
}

func (cartLineModel) TableName() string { return "cart_lines" }

type promotionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Code        string    `gorm:"column:code;not null;uniqueIndex"`
	Kind        string    `gorm:"column:kind;not null"`
	Value       string    `gorm:"column:value;not null"`
	MinOrder    int64     `gorm:"column:min_order;not null"`
	MaxDiscount *int64    `gorm:"column:max_discount"`
	StartsAt    time.Time `gorm:"column:starts_at;not null"`
	EndsAt      time.Time `gorm:"column:ends_at;not null"`
	UsageLimit  *int      `gorm:"column:usage_limit"`
	UsedCount   int       `gorm:"column:used_count;not null;default:0"`
	ItemIDs     []string  `gorm:"column:item_ids;serializer:json"`
	CategoryIDs []string  `gorm:"column:category_ids;serializer:json"`
	Active      bool      `gorm:"column:active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (promotionModel) TableName() string { return "promotions" }

type bookingModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	CustomerID      string    `gorm:"column:customer_id;not null;index:idx_bookings_customer,priority:1"`
	AppointmentDate string    `gorm:"column:appointment_date;not null"`
	AppointmentTime string    `gorm:"column:appointment_time;not null"`
	Subtotal        int64     `gorm:"column:subtotal;not null"`
	DiscountAmount  int64     `gorm:"column:discount_amount;not null"`
	FinalAmount     int64     `gorm:"column:final_amount;not null"`
	PromotionCode   *string   `gorm:"column:promotion_code"`
	Status          string    `gorm:"column:status;not null;index"`
	PaymentStatus   string    `gorm:"column:payment_status;not null"`
	PaymentMethod   string    `gorm:"column:payment_method;not null"`
	CustomerName    string    `gorm:"column:customer_name;not null"`
	CustomerPhone   string    `gorm:"column:customer_phone;not null"`
	CustomerEmail   string    `gorm:"column:customer_email;not null"`
	CustomerNotes   string    `gorm:"column:customer_notes;not null"`
	StaffNotes      string    `gorm:"column:staff_notes;not null"`
	StaffID         *string   `gorm:"column:staff_id"`
	CreatedMicros   int64     `gorm:"column:created_micros;not null;index:idx_bookings_customer,priority:2"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingLineModel struct {
	BookingID string `gorm:"column:booking_id;primaryKey"`
	Position  int    `gorm:"column:position;primaryKey;autoIncrement:false"`
	ItemID    string `gorm:"column:item_id;not null"`
	ItemName  string `gorm:"column:item_name;not null"`
	UnitPrice int64  `gorm:"column:unit_price;not null"`
}

func (bookingLineModel) TableName() string { return "booking_lines" }

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	CustomerID  string    `gorm:"column:customer_id;primaryKey"`
	Endpoint    string    `gorm:"column:endpoint;not null"`
	RequestHash string    `gorm:"column:request_hash;not null"`
	BookingID   string    `gorm:"column:booking_id;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime:false"`
}

func (idempotencyModel) TableName() string { return "idempotency_keys" }

type outboxModel struct {
	ID            string     `gorm:"column:id;primaryKey"`
	AggregateID   string     `gorm:"column:aggregate_id;not null"`
	EventType     string     `gorm:"column:event_type;not null"`
	Payload       string     `gorm:"column:payload;not null"`
	CreatedMicros int64      `gorm:"column:created_micros;not null;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "outbox_events" }

func allModels() []any {
	return []any{
		&serviceModel{},
		&cartModel{},
		&cartLineModel{},
		&promotionModel{},
		&bookingModel{},
		&bookingLineModel{},
		&idempotencyModel{},
		&outboxModel{},
	}
}
