package dimension

import "meeting-etl/internal/models"

// Dimension 去重取值 -> 从 1 开始的连续代理键（按首次出现顺序）
type Dimension struct {
	name        string
	valueColumn string
	idColumn    string
	values      []string
	ids         map[string]int
}

// Build 从可空取值构建维度表，null 值不进入维度
func Build(name, valueColumn, idColumn string, values []*string) *Dimension {
	d := &Dimension{
		name:        name,
		valueColumn: valueColumn,
		idColumn:    idColumn,
		ids:         make(map[string]int),
	}
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := d.ids[*v]; ok {
			continue
		}
		d.values = append(d.values, *v)
		d.ids[*v] = len(d.values)
	}
	return d
}

// Name 维度表名
func (d *Dimension) Name() string { return d.name }

// IDColumn 代理键列名（事实表中的外键列名）
func (d *Dimension) IDColumn() string { return d.idColumn }

// Len 维度行数
func (d *Dimension) Len() int { return len(d.values) }

// ID 左连接查找代理键；null 或未知取值返回 nil
func (d *Dimension) ID(v *string) *int {
	if v == nil {
		return nil
	}
	id, ok := d.ids[*v]
	if !ok {
		return nil
	}
	return &id
}

// Table 输出表：取值列在前，代理键列在后
func (d *Dimension) Table() models.Table {
	t := models.Table{
		Name: d.name,
		Columns: []models.Column{
			{Name: d.valueColumn, Type: models.ColText},
			{Name: d.idColumn, Type: models.ColInt},
		},
		Rows: make([][]any, 0, len(d.values)),
	}
	for i, v := range d.values {
		t.Rows = append(t.Rows, []any{v, i + 1})
	}
	return t
}
