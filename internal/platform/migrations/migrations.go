package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&customerRecord{},
		&userRecord{},
		&sessionRecord{},
		&saleRecord{},
		&saleItemRecord{},
		&outboxRecord{},
		&idempotencyRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	Name      string          `gorm:"column:name;size:255;uniqueIndex"`
	Category  string          `gorm:"column:category;size:128;index"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int32           `gorm:"column:stock;not null;check:chk_products_stock,stock >= 0"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Customer schema mirrors the customers Postgres adapter.
type customerRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:255;not null;index"`
	TaxID     string    `gorm:"column:tax_id;size:14;not null;uniqueIndex"`
	Phone     string    `gorm:"column:phone;size:32"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Username     string    `gorm:"column:username;size:128;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;size:32;not null;default:SELLER"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Email        string    `gorm:"column:email"`
	Phone        string    `gorm:"column:phone"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	Username  string     `gorm:"column:username;index"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Sale schema mirrors the sales Postgres adapter. Items cascade with their sale
// and restrict product deletes, since cancelling a sale restocks its products.
type saleRecord struct {
	ID         int64            `gorm:"primaryKey;column:id"`
	CustomerID int64            `gorm:"column:customer_id;not null;index"`
	SellerID   int64            `gorm:"column:seller_id;not null;index"`
	Total      decimal.Decimal  `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;index"`
	UpdatedAt  time.Time        `gorm:"column:updated_at"`
	Items      []saleItemRecord `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE"`
}

func (saleRecord) TableName() string { return "sales" }

type saleItemRecord struct {
	SaleID    int64           `gorm:"primaryKey;column:sale_id"`
	Line      int             `gorm:"primaryKey;column:line"`
	ProductID int64           `gorm:"column:product_id;not null;index"`
	Product   productRecord   `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:RESTRICT"`
	Quantity  int32           `gorm:"column:quantity;not null;check:chk_sale_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
}

func (saleItemRecord) TableName() string { return "sale_items" }

// Outbox schema mirrors the sales outbox.
type outboxRecord struct {
	ID          string     `gorm:"primaryKey;column:id;type:uuid"`
	EventName   string     `gorm:"column:event_name;size:128;not null"`
	AggregateID int64      `gorm:"column:aggregate_id;not null;index"`
	Payload     []byte     `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	PublishedAt *time.Time `gorm:"column:published_at;index"`
}

func (outboxRecord) TableName() string { return "sale_outbox_events" }

// Idempotency schema mirrors the sales idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	SaleID      int64     `gorm:"column:sale_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "sale_idempotency_keys" }
