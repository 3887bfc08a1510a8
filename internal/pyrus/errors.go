package pyrus

import "errors"

// Закрытый набор видов ошибок клиента Pyrus. Обработчики различают их
// через errors.Is: ErrAuth превращается в 401, ErrNotFound в 404,
// все остальное в 500 с текстом исходной ошибки.
var (
	// ErrAuth означает, что Pyrus отверг учетные данные
	ErrAuth = errors.New("pyrus authentication failed")

	// ErrNotFound означает, что запрошенный объект отсутствует в Pyrus
	ErrNotFound = errors.New("pyrus object not found")

	// ErrTransport означает сетевую ошибку до получения ответа Pyrus.
	// Потенциально временная, но ретраев в этом сервисе нет.
	ErrTransport = errors.New("pyrus transport error")

	// ErrUpstream означает любой другой отказ Pyrus (ответ получен, статус не 2xx)
	ErrUpstream = errors.New("pyrus upstream error")
)
