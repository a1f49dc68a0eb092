package types

import (
	"time"

	"github.com/google/uuid"
)

// ShippingRecord belongs to at most one Lot. The schema deliberately
// tolerates more than one record per lot; the validator turns that into a
// discrepancy instead of the importer rejecting it.
type ShippingRecord struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LotID          uuid.UUID  `gorm:"type:uuid;column:lot_id;not null;index" json:"lot_id"`
	Lot            *Lot       `gorm:"foreignKey:LotID;references:ID" json:"lot,omitempty"`
	ShipmentDate   *time.Time `gorm:"column:shipment_date" json:"shipment_date,omitempty"`
	ShipmentStatus string     `gorm:"column:shipment_status;not null" json:"shipment_status"`
	CarrierInfo    string     `gorm:"column:carrier_info" json:"carrier_info,omitempty"`
	Destination    string     `gorm:"column:destination" json:"destination,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
}

func (ShippingRecord) TableName() string { return "shipping_record" }
