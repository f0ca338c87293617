package laboratory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("laboratorio no encontrado")

// Laboratory is the tenant root: identity and contact data printed on the
// letterhead of every generated budget.
type Laboratory struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Nombre       string    `db:"nombre" json:"nombre"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Direccion    *string   `db:"direccion" json:"direccion,omitempty"`
	CodigoPostal *string   `db:"codigo_postal" json:"codigoPostal,omitempty"`
	Ciudad       *string   `db:"ciudad" json:"ciudad,omitempty"`
	Provincia    *string   `db:"provincia" json:"provincia,omitempty"`
	Pais         *string   `db:"pais" json:"pais,omitempty"`
	Telefono     *string   `db:"telefono" json:"telefono,omitempty"`
	SitioWeb     *string   `db:"sitio_web" json:"sitioWeb,omitempty"`
	// Logo is stored as a data URL and rendered into the budget header.
	Logo      *string   `db:"logo" json:"logo,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Nombre       *string `json:"nombre"`
	Email        *string `json:"email"`
	Direccion    *string `json:"direccion"`
	CodigoPostal *string `json:"codigoPostal"`
	Ciudad       *string `json:"ciudad"`
	Provincia    *string `json:"provincia"`
	Pais         *string `json:"pais"`
	Telefono     *string `json:"telefono"`
	SitioWeb     *string `json:"sitioWeb"`
	Logo         *string `json:"logo"`
}
