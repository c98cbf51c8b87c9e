package models

import (
	"time"

	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the GORM model for marketplace_orders table
type OrderModel struct {
	TenantAggregateModel
	MarketplaceType             string           `gorm:"column:marketplace_type;type:varchar(30);not null"`
	MarketplaceOrderID          string           `gorm:"column:marketplace_order_id;type:varchar(100);not null;index"`
	MarketplaceProductOrderID   string           `gorm:"column:marketplace_product_order_id;type:varchar(100)"`
	Status                      string           `gorm:"type:varchar(30);not null;index"`
	OrderedAt                   *time.Time       `gorm:"column:ordered_at"`
	TotalAmount                 decimal.Decimal  `gorm:"column:total_amount;type:decimal(18,2);not null;default:0"`
	DeliveryFee                 decimal.Decimal  `gorm:"column:delivery_fee;type:decimal(18,2);not null;default:0"`
	ExpectedSettlementAmount    decimal.Decimal  `gorm:"column:expected_settlement_amount;type:decimal(18,2);not null;default:0"`
	EstimatedDeliveryCommission decimal.Decimal  `gorm:"column:estimated_delivery_commission;type:decimal(18,2);not null;default:0"`
	BuyerName                   string           `gorm:"column:buyer_name;type:varchar(100)"`
	BuyerPhone                  string           `gorm:"column:buyer_phone;type:varchar(50)"`
	ReceiverName                string           `gorm:"column:receiver_name;type:varchar(100)"`
	ReceiverPhone               string           `gorm:"column:receiver_phone;type:varchar(50)"`
	ReceiverAddress             string           `gorm:"column:receiver_address;type:text"`
	ErpSynced                   bool             `gorm:"column:erp_synced;not null;default:false"`
	ErpDocumentID               string           `gorm:"column:erp_document_id;type:varchar(100)"`
	Items                       []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for OrderModel
func (OrderModel) TableName() string {
	return "marketplace_orders"
}

// ToDomain converts OrderModel to domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		TenantAggregateRoot:         m.ToDomainTenantAggregateRoot(),
		MarketplaceType:             order.MarketplaceType(m.MarketplaceType),
		MarketplaceOrderID:          m.MarketplaceOrderID,
		MarketplaceProductOrderID:   m.MarketplaceProductOrderID,
		Status:                      order.OrderStatus(m.Status),
		OrderedAt:                   m.OrderedAt,
		TotalAmount:                 m.TotalAmount,
		DeliveryFee:                 m.DeliveryFee,
		ExpectedSettlementAmount:    m.ExpectedSettlementAmount,
		EstimatedDeliveryCommission: m.EstimatedDeliveryCommission,
		BuyerName:                   m.BuyerName,
		BuyerPhone:                  m.BuyerPhone,
		ReceiverName:                m.ReceiverName,
		ReceiverPhone:               m.ReceiverPhone,
		ReceiverAddress:             m.ReceiverAddress,
		ErpSynced:                   m.ErpSynced,
		ErpDocumentID:               m.ErpDocumentID,
		Items:                       make([]order.OrderItem, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// OrderModelFromDomain creates an OrderModel from domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		MarketplaceType:             string(o.MarketplaceType),
		MarketplaceOrderID:          o.MarketplaceOrderID,
		MarketplaceProductOrderID:   o.MarketplaceProductOrderID,
		Status:                      string(o.Status),
		OrderedAt:                   o.OrderedAt,
		TotalAmount:                 o.TotalAmount,
		DeliveryFee:                 o.DeliveryFee,
		ExpectedSettlementAmount:    o.ExpectedSettlementAmount,
		EstimatedDeliveryCommission: o.EstimatedDeliveryCommission,
		BuyerName:                   o.BuyerName,
		BuyerPhone:                  o.BuyerPhone,
		ReceiverName:                o.ReceiverName,
		ReceiverPhone:               o.ReceiverPhone,
		ReceiverAddress:             o.ReceiverAddress,
		ErpSynced:                   o.ErpSynced,
		ErpDocumentID:               o.ErpDocumentID,
		Items:                       make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	for i, item := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(o.TenantID, item)
	}
	return m
}

// OrderItemModel is the GORM model for marketplace_order_items table
type OrderItemModel struct {
	ID                       uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID                 uuid.UUID        `gorm:"type:uuid;not null;index"`
	OrderID                  uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductName              string           `gorm:"column:product_name;type:varchar(500);not null"`
	OptionName               string           `gorm:"column:option_name;type:varchar(500)"`
	Quantity                 int              `gorm:"not null;default:1"`
	UnitPrice                decimal.Decimal  `gorm:"column:unit_price;type:decimal(18,2);not null;default:0"`
	TotalPrice               decimal.Decimal  `gorm:"column:total_price;type:decimal(18,2);not null;default:0"`
	MarketplaceProductID     string           `gorm:"column:marketplace_product_id;type:varchar(100)"`
	MarketplaceSku           string           `gorm:"column:marketplace_sku;type:varchar(100)"`
	ErpProductCode           string           `gorm:"column:erp_product_code;type:varchar(50)"`
	ErpWarehouseCode         string           `gorm:"column:erp_warehouse_code;type:varchar(50)"`
	CommissionRate           *decimal.Decimal `gorm:"column:commission_rate;type:decimal(6,3)"`
	ExpectedSettlementAmount decimal.Decimal  `gorm:"column:expected_settlement_amount;type:decimal(18,2);not null;default:0"`
	CreatedAt                time.Time        `gorm:"not null"`
	UpdatedAt                time.Time        `gorm:"not null"`
}

// TableName returns the table name for OrderItemModel
func (OrderItemModel) TableName() string {
	return "marketplace_order_items"
}

// ToDomain converts OrderItemModel to domain OrderItem
func (m *OrderItemModel) ToDomain() order.OrderItem {
	return order.OrderItem{
		ID:                       m.ID,
		OrderID:                  m.OrderID,
		ProductName:              m.ProductName,
		OptionName:               m.OptionName,
		Quantity:                 m.Quantity,
		UnitPrice:                m.UnitPrice,
		TotalPrice:               m.TotalPrice,
		MarketplaceProductID:     m.MarketplaceProductID,
		MarketplaceSku:           m.MarketplaceSku,
		ErpProductCode:           m.ErpProductCode,
		ErpWarehouseCode:         m.ErpWarehouseCode,
		CommissionRate:           m.CommissionRate,
		ExpectedSettlementAmount: m.ExpectedSettlementAmount,
	}
}

// OrderItemModelFromDomain creates an OrderItemModel from domain OrderItem
func OrderItemModelFromDomain(tenantID uuid.UUID, item order.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:                       item.ID,
		TenantID:                 tenantID,
		OrderID:                  item.OrderID,
		ProductName:              item.ProductName,
		OptionName:               item.OptionName,
		Quantity:                 item.Quantity,
		UnitPrice:                item.UnitPrice,
		TotalPrice:               item.TotalPrice,
		MarketplaceProductID:     item.MarketplaceProductID,
		MarketplaceSku:           item.MarketplaceSku,
		ErpProductCode:           item.ErpProductCode,
		ErpWarehouseCode:         item.ErpWarehouseCode,
		CommissionRate:           item.CommissionRate,
		ExpectedSettlementAmount: item.ExpectedSettlementAmount,
	}
}

// SettlementModel is the GORM model for marketplace_settlements table
type SettlementModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID           *uuid.UUID      `gorm:"type:uuid"`
	SettlementDate        *time.Time      `gorm:"column:settlement_date"`
	SalesAmount           decimal.Decimal `gorm:"column:sales_amount;type:decimal(18,2);not null;default:0"`
	CommissionAmount      decimal.Decimal `gorm:"column:commission_amount;type:decimal(18,2);not null;default:0"`
	DeliveryFeeCommission decimal.Decimal `gorm:"column:delivery_fee_commission;type:decimal(18,2);not null;default:0"`
	SettlementAmount      decimal.Decimal `gorm:"column:settlement_amount;type:decimal(18,2);not null;default:0"`
	CreatedAt             time.Time       `gorm:"not null"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for SettlementModel
func (SettlementModel) TableName() string {
	return "marketplace_settlements"
}

// ToDomain converts SettlementModel to domain Settlement
func (m *SettlementModel) ToDomain() order.Settlement {
	return order.Settlement{
		ID:                    m.ID,
		TenantID:              m.TenantID,
		OrderID:               m.OrderID,
		OrderItemID:           m.OrderItemID,
		SettlementDate:        m.SettlementDate,
		SalesAmount:           m.SalesAmount,
		CommissionAmount:      m.CommissionAmount,
		DeliveryFeeCommission: m.DeliveryFeeCommission,
		SettlementAmount:      m.SettlementAmount,
	}
}

// SettlementModelFromDomain creates a SettlementModel from domain Settlement
func SettlementModelFromDomain(s *order.Settlement) *SettlementModel {
	return &SettlementModel{
		ID:                    s.ID,
		TenantID:              s.TenantID,
		OrderID:               s.OrderID,
		OrderItemID:           s.OrderItemID,
		SettlementDate:        s.SettlementDate,
		SalesAmount:           s.SalesAmount,
		CommissionAmount:      s.CommissionAmount,
		DeliveryFeeCommission: s.DeliveryFeeCommission,
		SettlementAmount:      s.SettlementAmount,
	}
}
