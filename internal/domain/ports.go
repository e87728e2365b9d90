package domain

// RecordStore хранит упорядоченный список записей для каждого вида сущностей.
// Хранилище ничего не знает о семантике записей: разбор в сущности делает вызывающий.
//
// Сбои ввода-вывода не прерывают работу: ReadAll в таком случае пишет диагностику
// и возвращает пустой список, WriteAll пишет диагностику и возвращает ошибку,
// которую вызывающий может только залогировать.
type RecordStore interface {
	// Name возвращает имя драйвера для логов и метрик.
	Name() string
	// EnsureExists создаёт пустое хранилище, если его ещё нет.
	EnsureExists(kind StoreKind)
	// ReadAll читает все записи; при отсутствии хранилища создаёт его пустым.
	ReadAll(kind StoreKind) []Record
	// WriteAll полностью заменяет содержимое хранилища.
	WriteAll(kind StoreKind, records []Record) error
}

// ReservationEventPublisher публикует события жизненного цикла бронирований.
type ReservationEventPublisher interface {
	PublishReservationEvent(event ReservationEvent) error
}
