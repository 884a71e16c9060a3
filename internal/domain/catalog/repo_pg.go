package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// =========== Section Repository ===========

type sectionRepoPG struct{ pool *pgxpool.Pool }

func NewSectionRepoPG(pool *pgxpool.Pool) SectionRepository {
	return &sectionRepoPG{pool: pool}
}

func (r *sectionRepoPG) List(ctx context.Context) ([]Section, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM sections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Panel Repository ===========

type panelRepoPG struct{ pool *pgxpool.Pool }

func NewPanelRepoPG(pool *pgxpool.Pool) PanelRepository {
	return &panelRepoPG{pool: pool}
}

func (r *panelRepoPG) List(ctx context.Context) ([]Panel, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sec_id, name, graphable FROM panels ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Panel
	for rows.Next() {
		var p Panel
		if err := rows.Scan(&p.ID, &p.SecID, &p.Name, &p.Graphable); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *panelRepoPG) Create(ctx context.Context, p *Panel, createdBy string) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO panels (name, sec_id, graphable, created_by)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.SecID, p.Graphable, createdBy).Scan(&p.ID)
}

func (r *panelRepoPG) Update(ctx context.Context, id int, name string, graphable bool) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE panels SET name = $2, graphable = $3 WHERE id = $1`, id, name, graphable)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *panelRepoPG) Delete(ctx context.Context, id int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM panels WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// =========== Specialty Repository ===========

type specialtyRepoPG struct{ pool *pgxpool.Pool }

func NewSpecialtyRepoPG(pool *pgxpool.Pool) SpecialtyRepository {
	return &specialtyRepoPG{pool: pool}
}

func (r *specialtyRepoPG) List(ctx context.Context) ([]Specialty, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM specialties ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Specialty
	for rows.Next() {
		var s Specialty
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *specialtyRepoPG) Create(ctx context.Context, name, createdBy string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO specialties (name, created_by) VALUES ($1, $2) RETURNING id`,
		name, createdBy).Scan(&id)
	return id, err
}

func (r *specialtyRepoPG) Update(ctx context.Context, id int, name string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE specialties SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *specialtyRepoPG) Delete(ctx context.Context, id int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM specialties WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// =========== TestName Repository ===========

type testNameRepoPG struct{ pool *pgxpool.Pool }

func NewTestNameRepoPG(pool *pgxpool.Pool) TestNameRepository {
	return &testNameRepoPG{pool: pool}
}

func (r *testNameRepoPG) Get(ctx context.Context, loinc string) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT preferred_name FROM loinc_extra WHERE loinc_num = $1`, loinc).Scan(&name)
	return name, err
}

func (r *testNameRepoPG) Create(ctx context.Context, loinc, name, createdBy string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO loinc_extra (loinc_num, preferred_name, created_by) VALUES ($1, $2, $3)`,
		loinc, name, createdBy)
	return err
}

func (r *testNameRepoPG) Update(ctx context.Context, loinc, name string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE loinc_extra SET preferred_name = $2 WHERE loinc_num = $1`, loinc, name)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *testNameRepoPG) Delete(ctx context.Context, loinc string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loinc_extra WHERE loinc_num = $1`, loinc)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *testNameRepoPG) Search(ctx context.Context, term string, limit int) ([]TestMatch, error) {
	rows, err := r.pool.Query(ctx, `
		(SELECT preferred_name AS name, loinc_num FROM loinc_extra
		 WHERE preferred_name ILIKE $1 LIMIT $2)
		UNION ALL
		(SELECT shortname AS name, loinc_num FROM loinc
		 WHERE shortname ILIKE $1
		   AND NOT EXISTS (SELECT 1 FROM loinc_extra x WHERE x.loinc_num = loinc.loinc_num)
		 LIMIT $2)
		ORDER BY 1`, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TestMatch
	for rows.Next() {
		var m TestMatch
		if err := rows.Scan(&m.Name, &m.Loinc); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// =========== TestAssoc Repository ===========

type testAssocRepoPG struct{ pool *pgxpool.Pool }

func NewTestAssocRepoPG(pool *pgxpool.Pool) TestAssocRepository {
	return &testAssocRepoPG{pool: pool}
}

func (r *testAssocRepoPG) Create(ctx context.Context, a *TestAssoc) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO test_assocs (loinc_num, cid, panel_id, spec_id, fac_type_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.Loinc, a.CID, a.PanelID, a.SpecID, a.FacTypeID, a.CreatedBy).Scan(&a.ID)
}

func (r *testAssocRepoPG) Delete(ctx context.Context, id int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM test_assocs WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// =========== EntityType Repository ===========

type entityTypeRepoPG struct{ pool *pgxpool.Pool }

func NewEntityTypeRepoPG(pool *pgxpool.Pool) EntityTypeRepository {
	return &entityTypeRepoPG{pool: pool}
}

func (r *entityTypeRepoPG) List(ctx context.Context) ([]hierarchy.TierInfo, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, order_base FROM entity_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []hierarchy.TierInfo
	for rows.Next() {
		var info hierarchy.TierInfo
		if err := rows.Scan(&info.Tier, &info.Name, &info.OrderBase); err != nil {
			return nil, err
		}
		items = append(items, info)
	}
	return items, rows.Err()
}
