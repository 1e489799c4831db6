package dto

import "notary/internal/models"

type CustomerRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Address              string `json:"address" validate:"required,max=512"`
	Phone                string `json:"phone" validate:"omitempty,max=32"`
	Email                string `json:"email" validate:"omitempty,email"`
	Type                 string `json:"type" validate:"required,oneof=Individual Business"`
	NationalID           string `json:"national_id" validate:"omitempty,max=64"`
	PassportNumber       string `json:"passport_number" validate:"omitempty,max=64"`
	BusinessRegistration string `json:"business_registration" validate:"omitempty,max=64"`
}

func (c CustomerRequest) ToModel(id string) *models.Customer {
	return &models.Customer{
		ID:                   id,
		Name:                 c.Name,
		Address:              c.Address,
		Phone:                c.Phone,
		Email:                c.Email,
		Type:                 models.CustomerType(c.Type),
		NationalID:           c.NationalID,
		PassportNumber:       c.PassportNumber,
		BusinessRegistration: c.BusinessRegistration,
	}
}
