// Package smtp предоставляет SMTP транспорт для отправки писем и интерфейсы клиента,
// через которые mailer работает с сервером.
package smtp

import "io"

// Client интерфейс для SMTP клиента.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает соединения с сервером и знает отправителя:
// Sender для MAIL FROM, From для заголовка письма.
type TransportInterface interface {
	Connect() (Client, error)
	Sender() string
	From() string
}
