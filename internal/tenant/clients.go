package tenant

import (
	"context"

	"github.com/vendamais/orderhub/internal/apperr"
)

type ClientInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Document    string `json:"document"`
	Address     string `json:"address"`
}

func (r *Repo) CreateClient(ctx context.Context, companyID int64, in ClientInput) (*Client, error) {
	if in.Name == "" || in.PhoneNumber == "" {
		return nil, apperr.New(apperr.Validation, "name and phone_number are required")
	}
	if _, err := CompanyByID(ctx, r.DB, companyID); err != nil {
		return nil, err
	}

	var c Client
	err := r.DB.QueryRow(ctx, `
		INSERT INTO clients (company_id, name, phone_number, document, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, company_id, name, phone_number, document, address, created_at, updated_at`,
		companyID, in.Name, in.PhoneNumber, in.Document, in.Address).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.PhoneNumber, &c.Document, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "insert client")
	}
	return &c, nil
}

func (r *Repo) ListClients(ctx context.Context, companyID int64, term string) ([]Client, error) {
	sql := `SELECT id, company_id, name, phone_number, document, address, created_at, updated_at
	        FROM clients WHERE company_id=$1`
	args := []any{companyID}
	if term != "" {
		args = append(args, "%"+term+"%")
		sql += ` AND name ILIKE $2`
	}
	sql += ` ORDER BY name ASC`

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list clients")
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.PhoneNumber, &c.Document, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateClient(ctx context.Context, companyID, id int64, in ClientInput) (*Client, error) {
	if in.Name == "" || in.PhoneNumber == "" {
		return nil, apperr.New(apperr.Validation, "name and phone_number are required")
	}
	if _, err := ClientByID(ctx, r.DB, companyID, id); err != nil {
		return nil, err
	}

	var c Client
	err := r.DB.QueryRow(ctx, `
		UPDATE clients SET name=$3, phone_number=$4, document=$5, address=$6, updated_at=now()
		WHERE id=$1 AND company_id=$2
		RETURNING id, company_id, name, phone_number, document, address, created_at, updated_at`,
		id, companyID, in.Name, in.PhoneNumber, in.Document, in.Address).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.PhoneNumber, &c.Document, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "update client")
	}
	return &c, nil
}

func (r *Repo) DeleteClient(ctx context.Context, companyID, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM clients WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "delete client")
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "client not found")
	}
	return nil
}
