// Package reshape преобразует сырые объекты Pyrus в упрощенные ответы
// для фронтенда. Все функции чистые: принимают уже загруженные данные
// и не ходят в сеть сами (справочники подтягиваются через резолвер).
package reshape

import (
	"fmt"
	"strings"
	"time"

	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/pkg/api"
)

// Цвета срочности задачи
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorWhite  = "white"
)

// frozenStage номер этапа, на котором задача без срока считается замороженной
const frozenStage = 2

// yellowWindow горизонт, в пределах которого срок подсвечивается желтым
const yellowWindow = 2 * time.Hour

// Подписи для авторов, у которых нет нормального имени
const (
	botLabel     = "Бот"
	roleLabel    = "Роль"
	unknownLabel = "Неизвестный автор"
)

// placeholderNames служебные имена Pyrus, которые нельзя показывать
// как имя автора
var placeholderNames = map[string]struct{}{
	"pyrus.com":    {},
	"пользователь": {},
}

// UrgencyColor возвращает цвет срочности для срока due на момент now.
// Просроченные задачи красные, задачи со сроком ближе двух часов желтые,
// все остальные (включая задачи без срока) белые.
func UrgencyColor(due *time.Time, now time.Time) string {
	if due == nil {
		return ColorWhite
	}

	left := due.Sub(now)
	switch {
	case left < 0:
		return ColorRed
	case left < yellowWindow:
		return ColorYellow
	default:
		return ColorWhite
	}
}

// IsFrozen сообщает, заморожена ли задача: этап равен 2 и срок не задан.
// stage == nil означает, что этап отсутствует или не является числом.
func IsFrozen(stage *int, due *time.Time) bool {
	return stage != nil && *stage == frozenStage && due == nil
}

// AuthorName возвращает отображаемое имя автора комментария.
// Порядок: бот, роль, имя+фамилия, только имя, только непустая
// несистемная фамилия, несистемный email, общая заглушка.
func AuthorName(a *pyrus.Person) string {
	if a == nil {
		return unknownLabel
	}

	switch a.Type {
	case "bot":
		return botLabel
	case "role":
		if a.LastName != "" {
			return a.LastName
		}
		return roleLabel
	}

	if a.FirstName != "" && a.LastName != "" {
		return a.FirstName + " " + a.LastName
	}
	if a.FirstName != "" {
		return a.FirstName
	}
	if a.LastName != "" && !isPlaceholder(a.LastName) {
		return a.LastName
	}
	if a.Email != "" && !isPlaceholder(a.Email) {
		return a.Email
	}

	return unknownLabel
}

func isPlaceholder(name string) bool {
	_, ok := placeholderNames[strings.ToLower(name)]
	return ok
}

// InboxFields идентификаторы полей формы, из которых собирается
// обогащенный inbox
type InboxFields struct {
	DescriptionID int
	DueID         int
	StageID       int
}

// InboxItem собирает элемент обогащенного inbox из задачи реестра.
// Поля задачи читаются защищенно: отсутствующее или нечитаемое значение
// дает null в соответствующем поле ответа.
func InboxItem(task pyrus.Task, fields InboxFields, now time.Time) api.InboxItem {
	item := api.InboxItem{
		ID:    task.ID,
		Color: ColorWhite,
	}

	var due *time.Time
	var stage *int

	for _, f := range task.Fields {
		switch f.ID {
		case fields.DescriptionID:
			if s, ok := f.StringValue(); ok {
				item.Text = &s
			}
		case fields.DueID:
			if t, ok := f.TimeValue(); ok {
				due = &t
			}
		case fields.StageID:
			if s, ok := f.StringValue(); ok {
				item.Step = &s
			}
			if n, ok := f.IntValue(); ok {
				stage = &n
			}
		}
	}

	if due != nil {
		s := due.Format(time.RFC3339)
		item.Due = &s
	}
	if task.LastModifiedDate != nil {
		s := task.LastModifiedDate.Format(time.RFC3339)
		item.LastModifiedDate = &s
	}

	item.Color = UrgencyColor(due, now)
	item.IsFrozen = IsFrozen(stage, due)

	return item
}

// CatalogResolver возвращает справочник по его идентификатору
type CatalogResolver func(catalogID int) (*pyrus.Catalog, error)

// choiceTypes типы полей, для которых варианты выбора превращаются
// в псевдосправочник
var choiceTypes = map[string]struct{}{
	"status":          {},
	"checkmark":       {},
	"multiple_choice": {},
}

// EnrichFields обогащает поля формы: для полей-справочников подтягивает
// элементы справочника, для полей выбора синтезирует элементы из
// объявленных вариантов с идентификаторами 1..n.
func EnrichFields(fields []pyrus.FormField, resolve CatalogResolver) ([]api.FieldView, error) {
	views := make([]api.FieldView, 0, len(fields))

	for _, f := range fields {
		view := api.FieldView{
			ID:   f.ID,
			Type: f.Type,
			Name: f.Name,
		}

		switch {
		case f.Type == "catalog" && f.Info != nil && f.Info.CatalogID != 0:
			view.CatalogID = f.Info.CatalogID
			catalog, err := resolve(f.Info.CatalogID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve catalog %d: %w", f.Info.CatalogID, err)
			}
			view.Items = CatalogItems(catalog.Items)

		case isChoiceType(f.Type) && f.Info != nil:
			view.Items = choiceItems(f.Info.Options)
		}

		views = append(views, view)
	}

	return views, nil
}

func isChoiceType(fieldType string) bool {
	_, ok := choiceTypes[fieldType]
	return ok
}

// choiceItems синтезирует псевдосправочник из вариантов выбора
func choiceItems(options []pyrus.ChoiceOption) []api.CatalogItemView {
	items := make([]api.CatalogItemView, 0, len(options))
	for i, opt := range options {
		items = append(items, api.CatalogItemView{
			ItemID: i + 1,
			Values: []string{opt.ChoiceValue},
		})
	}
	return items
}

// CatalogItems преобразует элементы справочника Pyrus в ответ фронтенду
func CatalogItems(items []pyrus.CatalogItem) []api.CatalogItemView {
	views := make([]api.CatalogItemView, 0, len(items))
	for _, item := range items {
		values := item.Values
		if values == nil {
			values = []string{}
		}
		views = append(views, api.CatalogItemView{
			ItemID: item.ItemID,
			Values: values,
		})
	}
	return views
}

// CatalogView преобразует справочник Pyrus в ответ фронтенду
func CatalogView(c *pyrus.Catalog) api.CatalogView {
	return api.CatalogView{
		CatalogID: c.CatalogID,
		Name:      c.Name,
		Items:     CatalogItems(c.Items),
	}
}

// Comments преобразует комментарии задачи, вычисляя отображаемое имя автора
func Comments(comments []pyrus.Comment) []api.CommentView {
	views := make([]api.CommentView, 0, len(comments))
	for _, c := range comments {
		view := api.CommentView{
			ID:          c.ID,
			Text:        c.Text,
			AuthorName:  AuthorName(c.Author),
			Attachments: Attachments(c.Attachments),
		}
		if c.CreateDate != nil {
			s := c.CreateDate.Format(time.RFC3339)
			view.CreateDate = &s
		}
		views = append(views, view)
	}
	return views
}

// Attachments преобразует вложения Pyrus в ответ фронтенду
func Attachments(attachments []pyrus.Attachment) []api.AttachmentView {
	if len(attachments) == 0 {
		return nil
	}
	views := make([]api.AttachmentView, 0, len(attachments))
	for _, a := range attachments {
		views = append(views, api.AttachmentView{
			ID:   a.ID,
			Name: a.Name,
			Size: a.Size,
			URL:  a.URL,
		})
	}
	return views
}

// FormView собирает структуру формы с обогащенными полями
func FormView(form *pyrus.Form, resolve CatalogResolver) (*api.FormView, error) {
	fields, err := EnrichFields(form.Fields, resolve)
	if err != nil {
		return nil, err
	}

	return &api.FormView{
		ID:     form.ID,
		Name:   form.Name,
		Fields: fields,
	}, nil
}

// TaskFormView собирает форму задачи: обогащенные поля с текущими
// значениями, комментарии и вложения.
func TaskFormView(task *pyrus.Task, form *pyrus.Form, resolve CatalogResolver) (*api.TaskFormView, error) {
	fields, err := EnrichFields(form.Fields, resolve)
	if err != nil {
		return nil, err
	}

	// Текущие значения полей задачи по ID поля формы
	values := make(map[int]pyrus.TaskField, len(task.Fields))
	for _, f := range task.Fields {
		values[f.ID] = f
	}

	for i := range fields {
		if tf, ok := values[fields[i].ID]; ok {
			fields[i].Value = tf.Value
		}
	}

	return &api.TaskFormView{
		TaskID:      task.ID,
		FormID:      form.ID,
		FormName:    form.Name,
		Fields:      fields,
		Comments:    Comments(task.Comments),
		Attachments: Attachments(task.Attachments),
	}, nil
}
