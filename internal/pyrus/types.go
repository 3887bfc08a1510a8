package pyrus

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Person представляет участника Pyrus (автора комментария, ответственного).
// Любое из полей может отсутствовать в ответе, пустая строка означает "нет данных".
type Person struct {
	ID        int    `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Type      string `json:"type,omitempty"` // "user", "bot" или "role"
}

// ChoiceOption представляет один вариант выбора в поле формы.
type ChoiceOption struct {
	ChoiceID    int    `json:"choice_id"`
	ChoiceValue string `json:"choice_value"`
}

// FormFieldInfo содержит дополнительные сведения о поле формы.
type FormFieldInfo struct {
	CatalogID int            `json:"catalog_id,omitempty"`
	Options   []ChoiceOption `json:"options,omitempty"`
}

// FormField описывает поле в структуре формы.
type FormField struct {
	ID   int            `json:"id"`
	Type string         `json:"type"`
	Name string         `json:"name"`
	Info *FormFieldInfo `json:"info,omitempty"`
}

// Form представляет форму Pyrus.
type Form struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Fields []FormField `json:"fields,omitempty"`
}

// TaskField представляет заполненное поле задачи. Value приходит в разных
// типах (строка, число, объект), поэтому хранится сырым JSON, а доступ
// идет через типизированные хелперы.
type TaskField struct {
	ID    int             `json:"id"`
	Type  string          `json:"type,omitempty"`
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// StringValue возвращает значение поля как строку.
// Числа приводятся к строке, отсутствующее значение дает ok=false.
func (f TaskField) StringValue() (string, bool) {
	if len(f.Value) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(f.Value, &s); err == nil {
		return s, true
	}

	var n float64
	if err := json.Unmarshal(f.Value, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}

	return "", false
}

// IntValue возвращает значение поля как целое число.
// Числовые строки ("2") тоже принимаются, все остальное дает ok=false.
func (f TaskField) IntValue() (int, bool) {
	if len(f.Value) == 0 {
		return 0, false
	}

	var n int
	if err := json.Unmarshal(f.Value, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(f.Value, &s); err == nil {
		if parsed, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return parsed, true
		}
	}

	return 0, false
}

// TimeValue возвращает значение поля как время.
// Pyrus отдает либо дату "2006-01-02", либо момент в RFC3339.
func (f TaskField) TimeValue() (time.Time, bool) {
	s, ok := f.StringValue()
	if !ok || s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Attachment представляет вложение комментария или задачи.
type Attachment struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Comment представляет комментарий к задаче.
type Comment struct {
	ID          int64        `json:"id"`
	Text        string       `json:"text,omitempty"`
	CreateDate  *time.Time   `json:"create_date,omitempty"`
	Author      *Person      `json:"author,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Task представляет задачу Pyrus. Почти все поля опциональны:
// реестр формы возвращает задачи только с запрошенными полями.
type Task struct {
	ID               int          `json:"id"`
	Text             string       `json:"text,omitempty"`
	Subject          string       `json:"subject,omitempty"`
	FormID           int          `json:"form_id,omitempty"`
	CreateDate       *time.Time   `json:"create_date,omitempty"`
	LastModifiedDate *time.Time   `json:"last_modified_date,omitempty"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	Author           *Person      `json:"author,omitempty"`
	Responsible      *Person      `json:"responsible,omitempty"`
	Fields           []TaskField  `json:"fields,omitempty"`
	Comments         []Comment    `json:"comments,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
}

// CatalogItem представляет элемент справочника.
type CatalogItem struct {
	ItemID int      `json:"item_id"`
	Values []string `json:"values,omitempty"`
}

// Catalog представляет справочник Pyrus.
type Catalog struct {
	CatalogID int           `json:"catalog_id"`
	Name      string        `json:"name,omitempty"`
	Items     []CatalogItem `json:"items,omitempty"`
}

// RegistryRequest задает параметры выборки реестра формы.
type RegistryRequest struct {
	IncludeArchived bool  `json:"include_archived,omitempty"`
	TaskIDs         []int `json:"task_ids,omitempty"`
	FieldIDs        []int `json:"field_ids,omitempty"`
}

// CommentRequest задает параметры комментария к задаче.
type CommentRequest struct {
	Text         string            `json:"text,omitempty"`
	Action       string            `json:"action,omitempty"`
	FieldUpdates []json.RawMessage `json:"field_updates,omitempty"`
}

// CreateTaskRequest задает параметры новой задачи.
type CreateTaskRequest struct {
	FormID  int               `json:"form_id,omitempty"`
	Text    string            `json:"text,omitempty"`
	Subject string            `json:"subject,omitempty"`
	DueDate string            `json:"due_date,omitempty"`
	Fields  []json.RawMessage `json:"fields,omitempty"`
}
