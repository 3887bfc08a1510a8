package api

import "encoding/json"

// CommentTaskRequest представляет запрос на комментарий к задаче
type CommentTaskRequest struct {
	Text         string            `json:"text"`
	Action       string            `json:"action,omitempty"`
	FieldUpdates []json.RawMessage `json:"field_updates,omitempty"`
}

// CreateTaskRequest представляет запрос на создание задачи
type CreateTaskRequest struct {
	FormID  int               `json:"form_id,omitempty"`
	Text    string            `json:"text,omitempty"`
	Subject string            `json:"subject,omitempty"`
	DueDate string            `json:"due_date,omitempty"`
	Fields  []json.RawMessage `json:"fields,omitempty"`
}

// InboxItem представляет элемент обогащенного inbox для фронтенда
type InboxItem struct {
	ID               int     `json:"id"`
	Text             *string `json:"text"`               // описание из поля формы, null если не заполнено
	Due              *string `json:"due"`                // срок в RFC3339, null если не задан
	Step             *string `json:"step"`               // этап как пришел из Pyrus
	IsFrozen         bool    `json:"is_frozen"`          // заморожена: этап 2 и нет срока
	Color            string  `json:"color"`              // red / yellow / white
	LastModifiedDate *string `json:"last_modified_date"` // RFC3339, null если неизвестно
}

// AttachmentView представляет вложение в ответе фронтенду
type AttachmentView struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url,omitempty"`
}

// CatalogItemView представляет элемент справочника в ответе фронтенду
type CatalogItemView struct {
	ItemID int      `json:"item_id"`
	Values []string `json:"values"`
}

// CatalogView представляет справочник в ответе фронтенду
type CatalogView struct {
	CatalogID int               `json:"catalog_id"`
	Name      string            `json:"name,omitempty"`
	Items     []CatalogItemView `json:"items"`
}

// FieldView представляет поле формы с подтянутым справочником.
// Для полей выбора (status, checkmark, multiple_choice) Items синтезируются
// из объявленных вариантов с идентификаторами 1..n.
type FieldView struct {
	ID        int               `json:"id"`
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	CatalogID int               `json:"catalog_id,omitempty"`
	Items     []CatalogItemView `json:"items,omitempty"`
	Value     json.RawMessage   `json:"value,omitempty"` // текущее значение, только в варианте для задачи
}

// CommentView представляет комментарий задачи в ответе фронтенду
type CommentView struct {
	ID          int64            `json:"id"`
	Text        string           `json:"text"`
	CreateDate  *string          `json:"create_date"` // RFC3339, null если неизвестно
	AuthorName  string           `json:"author_name"` // отображаемое имя автора
	Attachments []AttachmentView `json:"attachments,omitempty"`
}

// FormView представляет структуру формы с обогащенными полями
type FormView struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Fields []FieldView `json:"fields"`
}

// TaskFormView представляет форму задачи: структура, текущие значения,
// комментарии и вложения
type TaskFormView struct {
	TaskID      int              `json:"task_id"`
	FormID      int              `json:"form_id"`
	FormName    string           `json:"form_name"`
	Fields      []FieldView      `json:"fields"`
	Comments    []CommentView    `json:"comments"`
	Attachments []AttachmentView `json:"attachments,omitempty"`
}

// TaskFullResponse представляет задачу вместе с полным списком справочников
type TaskFullResponse struct {
	Task     any           `json:"task"`
	Catalogs []CatalogView `json:"catalogs"`
}
