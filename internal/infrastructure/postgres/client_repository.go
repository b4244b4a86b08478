package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository sobre PostgreSQL.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador de persistencia para clientes.
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, name, email, phone, description, address, photo_url, created_at, updated_at`

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Description, &c.Address, &c.PhotoURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Description, c.Address, c.PhotoURL, c.CreatedAt, c.UpdatedAt)
	return storageErr("insert client", err)
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get client", err)
	}
	return c, nil
}

// Update reemplaza los datos de contacto.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	query := `
		UPDATE clients SET name = $2, email = $3, phone = $4, description = $5, address = $6, photo_url = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Description, c.Address, c.PhotoURL, c.UpdatedAt)
	if err != nil {
		return storageErr("update client", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// List lista clientes por nombre con paginación.
func (r *ClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY name, id LIMIT NULLIF($1, 0) OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storageErr("list clients", err)
	}
	defer rows.Close()
	list := make([]*entity.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, storageErr("scan client", err)
		}
		list = append(list, c)
	}
	return list, storageErr("list clients", rows.Err())
}

// Delete elimina un cliente. Con pedidos o movimientos asociados la FK lo impide y se devuelve ErrConflict.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrConflict
	}
	return storageErr("delete client", err)
}
