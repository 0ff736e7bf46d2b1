package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists sales and their items in PostgreSQL using GORM. Calls
// join the transaction carried by ctx when there is one.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// saleItemRecord is keyed by line so repeated products stay distinct rows.
type saleItemRecord struct {
	SaleID    int64           `gorm:"primaryKey;column:sale_id"`
	Line      int             `gorm:"primaryKey;column:line"`
	ProductID int64           `gorm:"column:product_id;not null;index"`
	Quantity  int32           `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
}

func (saleItemRecord) TableName() string { return "sale_items" }

// Save inserts a new sale or replaces the header and items of an existing one.
func (r *Repository) Save(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(sale)
	items := record.Items
	record.Items = nil

	// Header and items must land together even when the caller has no transaction.
	err := transaction.DB(ctx, r.db).Transaction(func(db *gorm.DB) error {
		if record.ID == 0 {
			if err := db.Omit("Items").Create(&record).Error; err != nil {
				return err
			}
		} else {
			result := db.Model(&saleRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
				"customer_id": record.CustomerID,
				"seller_id":   record.SellerID,
				"total":       record.Total,
				"updated_at":  gorm.Expr("NOW()"),
			})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ports.ErrNotFound
			}
			if err := db.Where("sale_id = ?", record.ID).Delete(&saleItemRecord{}).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].SaleID = record.ID
		}
		if len(items) == 0 {
			return nil
		}
		return db.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a sale with its items in line order.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	return r.first(transaction.DB(ctx, r.db), id)
}

// GetForUpdate fetches a sale and holds its row lock until the surrounding
// transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Sale, error) {
	return r.first(transaction.DB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "sales"}}), id)
}

func (r *Repository) first(db *gorm.DB, id int64) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	if err := db.Preload("Items", orderedItems).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes a sale; its items go with it.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return transaction.DB(ctx, r.db).Transaction(func(db *gorm.DB) error {
		if err := db.Where("sale_id = ?", id).Delete(&saleItemRecord{}).Error; err != nil {
			return err
		}
		result := db.Delete(&saleRecord{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

// List pages sales by creation date, newest first.
func (r *Repository) List(ctx context.Context, page projection.PageRequest) (projection.Page[*domain.Sale], error) {
	page = page.Normalize()
	result := projection.Page[*domain.Sale]{Page: page.Page, Size: page.Size, Items: []*domain.Sale{}}
	if err := r.ensureDB(); err != nil {
		return result, err
	}
	db := transaction.DB(ctx, r.db)
	if err := db.Model(&saleRecord{}).Count(&result.TotalElements).Error; err != nil {
		return result, err
	}
	var records []saleRecord
	err := db.Preload("Items", orderedItems).
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&records).Error
	if err != nil {
		return result, err
	}
	result.Items = toDomainList(records)
	return result, nil
}

func (r *Repository) FindBySeller(ctx context.Context, sellerID int64) ([]*domain.Sale, error) {
	return r.find(ctx, "seller_id = ?", sellerID)
}

func (r *Repository) FindByCustomer(ctx context.Context, customerID int64) ([]*domain.Sale, error) {
	return r.find(ctx, "customer_id = ?", customerID)
}

// FindByDateRange matches creation dates within [start, end].
func (r *Repository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Sale, error) {
	return r.find(ctx, "created_at BETWEEN ? AND ?", start, end)
}

func (r *Repository) ReferencesProduct(ctx context.Context, productID int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := transaction.DB(ctx, r.db).Model(&saleItemRecord{}).
		Where("product_id = ?", productID).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *Repository) find(ctx context.Context, query string, args ...any) ([]*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []saleRecord
	err := transaction.DB(ctx, r.db).
		Preload("Items", orderedItems).
		Where(query, args...).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres sale repository not configured")
	}
	return nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("line")
}

func toRecord(sale *domain.Sale) saleRecord {
	record := saleRecord{
		ID:         sale.ID,
		CustomerID: sale.CustomerID,
		SellerID:   sale.SellerID,
		Total:      sale.Total(),
		CreatedAt:  sale.CreatedAt,
	}
	for _, item := range sale.Items() {
		record.Items = append(record.Items, saleItemRecord{
			SaleID:    sale.ID,
			Line:      item.Line,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return record
}

func (r saleRecord) toDomain() *domain.Sale {
	items := make([]domain.Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.Item{
			Line:      item.Line,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return domain.Rehydrate(r.ID, r.CustomerID, r.SellerID, items, r.CreatedAt, r.UpdatedAt)
}

func toDomainList(records []saleRecord) []*domain.Sale {
	sales := make([]*domain.Sale, 0, len(records))
	for i := range records {
		sales = append(sales, records[i].toDomain())
	}
	return sales
}
