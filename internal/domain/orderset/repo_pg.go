package orderset

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diverse/diverse/internal/domain/hierarchy"
	"github.com/diverse/diverse/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== SectionOrder Repository ===========

type sectionOrderRepoPG struct{ pool *pgxpool.Pool }

func NewSectionOrderRepoPG(pool *pgxpool.Pool) SectionOrderRepository {
	return &sectionOrderRepoPG{pool: pool}
}

func (r *sectionOrderRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sectionOrderCols = `so.sec_id, s.name, so.num_cols, so.col, so.order_val, so.hide,
	so.entity_type_id, so.entity_id, so.spec_id`

func scanSectionOrders(rows pgx.Rows, withSpecName bool) ([]SectionOrder, error) {
	defer rows.Close()
	var items []SectionOrder
	for rows.Next() {
		var so SectionOrder
		dest := []interface{}{&so.SectionID, &so.Name, &so.NumCols, &so.Column, &so.Order, &so.Hide,
			&so.Scope.Tier, &so.Scope.EntityID, &so.Scope.SpecialtyID}
		if withSpecName {
			dest = append(dest, &so.SpecName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		items = append(items, so)
	}
	return items, rows.Err()
}

func (r *sectionOrderRepoPG) FetchBySpecialty(ctx context.Context, specialtyID int) ([]SectionOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sectionOrderCols+`
		FROM section_orders so
		JOIN sections s ON s.id = so.sec_id
		WHERE so.entity_type_id = $1 OR so.spec_id = $2
		ORDER BY so.order_val`, hierarchy.TierGlobal, specialtyID)
	if err != nil {
		return nil, err
	}
	return scanSectionOrders(rows, false)
}

func (r *sectionOrderRepoPG) FetchAll(ctx context.Context, limit, offset int) ([]SectionOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sectionOrderCols+`, COALESCE(sp.name, '')
		FROM section_orders so
		JOIN sections s ON s.id = so.sec_id
		LEFT JOIN specialties sp ON sp.id = so.spec_id
		ORDER BY so.entity_type_id, so.entity_id, so.spec_id, so.order_val
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanSectionOrders(rows, true)
}

func (r *sectionOrderRepoPG) FetchByAccount(ctx context.Context, accountID string) ([]SectionOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sectionOrderCols+`, COALESCE(sp.name, '')
		FROM section_orders so
		JOIN sections s ON s.id = so.sec_id
		LEFT JOIN specialties sp ON sp.id = so.spec_id
		WHERE so.entity_type_id = $1 AND so.entity_id = $2
		ORDER BY so.spec_id, so.order_val`, hierarchy.TierUser, accountID)
	if err != nil {
		return nil, err
	}
	return scanSectionOrders(rows, true)
}

func (r *sectionOrderRepoPG) Insert(ctx context.Context, scope hierarchy.Scope, rows []SectionOrderRow) error {
	for _, row := range rows {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO section_orders (sec_id, entity_type_id, entity_id, spec_id, num_cols, col, order_val, hide)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			row.SectionID, scope.Tier, scope.EntityID, scope.SpecialtyID,
			row.NumCols, row.Column, row.Order, row.Hide)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *sectionOrderRepoPG) Delete(ctx context.Context, scope hierarchy.Scope) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM section_orders
		WHERE entity_type_id = $1 AND entity_id = $2 AND spec_id = $3`,
		scope.Tier, scope.EntityID, scope.SpecialtyID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// =========== PanelOrder Repository ===========

type panelOrderRepoPG struct{ pool *pgxpool.Pool }

func NewPanelOrderRepoPG(pool *pgxpool.Pool) PanelOrderRepository {
	return &panelOrderRepoPG{pool: pool}
}

func (r *panelOrderRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *panelOrderRepoPG) FetchBySection(ctx context.Context, sectionID, specialtyID int) ([]PanelOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT po.panel_id, p.name, p.graphable, po.order_val, po.hide,
			po.entity_type_id, po.entity_id, po.spec_id
		FROM panel_orders po
		JOIN panels p ON p.id = po.panel_id
		WHERE (po.entity_type_id = $1 OR po.spec_id = $2)
			AND ($3 = 0 OR p.sec_id = $3)
		ORDER BY po.order_val`, hierarchy.TierGlobal, specialtyID, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PanelOrder
	for rows.Next() {
		var po PanelOrder
		if err := rows.Scan(&po.PanelID, &po.Name, &po.Graphable, &po.Order, &po.Hide,
			&po.Scope.Tier, &po.Scope.EntityID, &po.Scope.SpecialtyID); err != nil {
			return nil, err
		}
		items = append(items, po)
	}
	return items, rows.Err()
}

func (r *panelOrderRepoPG) Insert(ctx context.Context, scope hierarchy.Scope, rows []PanelOrderRow) error {
	for _, row := range rows {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO panel_orders (panel_id, entity_type_id, entity_id, spec_id, order_val, hide)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			row.PanelID, scope.Tier, scope.EntityID, scope.SpecialtyID, row.Order, row.Hide)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *panelOrderRepoPG) Delete(ctx context.Context, scope hierarchy.Scope, sectionID int) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM panel_orders po
		WHERE po.entity_type_id = $1 AND po.entity_id = $2 AND po.spec_id = $3
			AND ($4 = 0 OR po.panel_id IN (SELECT id FROM panels WHERE sec_id = $4))`,
		scope.Tier, scope.EntityID, scope.SpecialtyID, sectionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// =========== TestOrder Repository ===========

type testOrderRepoPG struct{ pool *pgxpool.Pool }

func NewTestOrderRepoPG(pool *pgxpool.Pool) TestOrderRepository {
	return &testOrderRepoPG{pool: pool}
}

func (r *testOrderRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const testOrderCols = `a.loinc_num, COALESCE(x.preferred_name, l.shortname), a.id, a.panel_id,
	o.order_val, o.hide,
	COALESCE(r.low_val, 0), COALESCE(r.high_val, 0), COALESCE(r.units, ''),
	o.entity_type_id, o.entity_id, o.spec_id`

func scanTestOrders(rows pgx.Rows) ([]TestOrder, error) {
	defer rows.Close()
	var items []TestOrder
	for rows.Next() {
		var to TestOrder
		if err := rows.Scan(&to.Loinc, &to.Name, &to.AssocID, &to.PanelID,
			&to.Order, &to.Hide, &to.Min, &to.Max, &to.Units,
			&to.Scope.Tier, &to.Scope.EntityID, &to.Scope.SpecialtyID); err != nil {
			return nil, err
		}
		items = append(items, to)
	}
	return items, rows.Err()
}

func (r *testOrderRepoPG) FetchByPanel(ctx context.Context, panelID, specialtyID int) ([]TestOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+testOrderCols+`
		FROM test_orders o
		JOIN test_assocs a ON a.id = o.assoc_id
		JOIN loinc l ON l.loinc_num = a.loinc_num
		LEFT JOIN loinc_extra x ON x.loinc_num = a.loinc_num
		LEFT JOIN test_ranges r ON r.loinc_num = a.loinc_num AND r.gender = ''
		WHERE (o.entity_type_id = $1 OR o.spec_id = $2) AND a.panel_id = $3
		ORDER BY o.order_val`, hierarchy.TierGlobal, specialtyID, panelID)
	if err != nil {
		return nil, err
	}
	return scanTestOrders(rows)
}

func (r *testOrderRepoPG) FetchForProblem(ctx context.Context, specialtyID int, problemCID, facTypeID string, f PatientFilter) ([]TestOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+testOrderCols+`
		FROM test_orders o
		JOIN test_assocs a ON a.id = o.assoc_id AND a.cid = $3
		JOIN loinc l ON l.loinc_num = a.loinc_num
		LEFT JOIN loinc_extra x ON x.loinc_num = a.loinc_num
		LEFT JOIN test_ranges r ON r.loinc_num = a.loinc_num
			AND (r.gender = $4 OR r.gender = '')
			AND r.min_age <= $5 AND r.max_age > $5
		WHERE o.entity_type_id = $1 OR (o.spec_id = $2 AND a.fac_type_id = $6)
		ORDER BY o.order_val`, hierarchy.TierGlobal, specialtyID, problemCID, f.Gender, f.Age, facTypeID)
	if err != nil {
		return nil, err
	}
	return scanTestOrders(rows)
}

func (r *testOrderRepoPG) Insert(ctx context.Context, scope hierarchy.Scope, rows []TestOrderRow) error {
	for _, row := range rows {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO test_orders (assoc_id, entity_type_id, entity_id, spec_id, order_val, hide)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			row.AssocID, scope.Tier, scope.EntityID, scope.SpecialtyID, row.Order, row.Hide)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *testOrderRepoPG) Delete(ctx context.Context, scope hierarchy.Scope, panelID int) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM test_orders o
		WHERE o.entity_type_id = $1 AND o.entity_id = $2 AND o.spec_id = $3
			AND ($4 = 0 OR o.assoc_id IN (SELECT id FROM test_assocs WHERE panel_id = $4))`,
		scope.Tier, scope.EntityID, scope.SpecialtyID, panelID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
