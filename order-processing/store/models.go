package store

import (
	"time"

	"order-fulfillment/order-processing/types"
)

// OrderRow is the persisted order record
type OrderRow struct {
	ID                  int64  `gorm:"primaryKey"`
	DocumentID          string `gorm:"size:64;index"`
	FirstName           *string
	LastName            *string
	Email               *string
	Phone               *string
	DeliveryMethod      *string
	DeliveryAddress     *string
	PaymentMethod       *string
	PrepaymentAgreement *bool
	Comment             *string
	CreatedAt           time.Time
	Items               []OrderItemRow `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderRow) TableName() string { return "orders" }

// OrderItemRow is one persisted order line with its size and material attributes flattened
type OrderItemRow struct {
	ID                 int64 `gorm:"primaryKey"`
	OrderID            int64 `gorm:"index"`
	Position           int
	ProductID          string
	ModelName          *string
	Qty                *float64
	UnitPrice          *float64
	LineTotal          *float64
	Width              *int
	Height             *int
	Depth              *int
	BodyMaterialID     *int64
	BodyMaterialTitle  *string
	FrontMaterialID    *int64
	FrontMaterialTitle *string
	ProductImg         *string
}

func (OrderItemRow) TableName() string { return "order_items" }

// ShopRow is the single-record shop settings table
type ShopRow struct {
	ID          int64 `gorm:"primaryKey"`
	OrdersEmail *string
}

func (ShopRow) TableName() string { return "shops" }

func (r OrderRow) toDomain() types.Order {
	o := types.Order{
		ID:                  r.ID,
		DocumentID:          r.DocumentID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Email:               r.Email,
		Phone:               r.Phone,
		DeliveryMethod:      r.DeliveryMethod,
		DeliveryAddress:     r.DeliveryAddress,
		PaymentMethod:       r.PaymentMethod,
		PrepaymentAgreement: r.PrepaymentAgreement,
		Comment:             r.Comment,
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		o.CreatedAt = &created
	}
	if r.Items != nil {
		o.Items = itemsToDomain(r.Items)
	}
	return o
}

func itemsToDomain(rows []OrderItemRow) []types.OrderItem {
	items := make([]types.OrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items
}

func (r OrderItemRow) toDomain() types.OrderItem {
	item := types.OrderItem{
		ProductID:  r.ProductID,
		ModelName:  r.ModelName,
		Qty:        r.Qty,
		UnitPrice:  r.UnitPrice,
		LineTotal:  r.LineTotal,
		ProductImg: r.ProductImg,
	}
	if r.Width != nil || r.Height != nil || r.Depth != nil {
		item.Size = &types.Size{Width: r.Width, Height: r.Height, Depth: r.Depth}
	}
	if r.BodyMaterialID != nil || r.BodyMaterialTitle != nil {
		item.BodyMaterial = &types.Material{ID: r.BodyMaterialID, Title: r.BodyMaterialTitle}
	}
	if r.FrontMaterialID != nil || r.FrontMaterialTitle != nil {
		item.FrontMaterial = &types.Material{ID: r.FrontMaterialID, Title: r.FrontMaterialTitle}
	}
	return item
}

func orderRowFromDomain(o types.Order) OrderRow {
	row := OrderRow{
		ID:                  o.ID,
		DocumentID:          o.DocumentID,
		FirstName:           o.FirstName,
		LastName:            o.LastName,
		Email:               o.Email,
		Phone:               o.Phone,
		DeliveryMethod:      o.DeliveryMethod,
		DeliveryAddress:     o.DeliveryAddress,
		PaymentMethod:       o.PaymentMethod,
		PrepaymentAgreement: o.PrepaymentAgreement,
		Comment:             o.Comment,
	}
	if o.CreatedAt != nil {
		row.CreatedAt = *o.CreatedAt
	}
	if o.Items != nil {
		row.Items = make([]OrderItemRow, 0, len(o.Items))
		for i, item := range o.Items {
			row.Items = append(row.Items, itemRowFromDomain(i+1, item))
		}
	}
	return row
}

func itemRowFromDomain(position int, item types.OrderItem) OrderItemRow {
	row := OrderItemRow{
		Position:   position,
		ProductID:  item.ProductID,
		ModelName:  item.ModelName,
		Qty:        item.Qty,
		UnitPrice:  item.UnitPrice,
		LineTotal:  item.LineTotal,
		ProductImg: item.ProductImg,
	}
	if item.Size != nil {
		row.Width, row.Height, row.Depth = item.Size.Width, item.Size.Height, item.Size.Depth
	}
	if item.BodyMaterial != nil {
		row.BodyMaterialID, row.BodyMaterialTitle = item.BodyMaterial.ID, item.BodyMaterial.Title
	}
	if item.FrontMaterial != nil {
		row.FrontMaterialID, row.FrontMaterialTitle = item.FrontMaterial.ID, item.FrontMaterial.Title
	}
	return row
}
