// internal/pkg/mq/rabbitmq.go
package mq

import (
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// 队列名常量。入站队列在运行时还会拼上配置的前缀。
const (
	QueueConsumeInfoInserting = "consume_info_inserting"
	QueueConsumeInfoInserted  = "consume_info_inserted"
)

// Conn 持有 RabbitMQ 连接和进程内共享的 channel。
// channel 在所有并发消息处理器之间复用，amqp091 的 Channel 本身串行化发送。
type Conn struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

// Dial 建立连接并打开 channel。
func Dial(url string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open rabbitmq channel")
	}
	return &Conn{conn: conn, Channel: ch}, nil
}

// DeclareDurableQueue 幂等声明一个持久化、非排他、不自动删除的队列。
// 同名队列属性不一致时 broker 会报错，调用方应让启动失败。
func (c *Conn) DeclareDurableQueue(name string) (amqp.Queue, error) {
	q, err := c.Channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return amqp.Queue{}, errors.Wrapf(err, "declare queue [%s]", name)
	}
	return q, nil
}

// Close 先关 channel 再关连接。
func (c *Conn) Close() {
	if c.Channel != nil {
		c.Channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
