package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList stores an ordered list of strings as a JSON column.
// For images the first element is the primary image.
type StringList []string

// Value implements the driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b).Value()
}

// Scan implements the sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	var j datatypes.JSON
	if err := j.Scan(value); err != nil {
		return err
	}
	if len(j) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(j, (*[]string)(s))
}

// GormDBDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
