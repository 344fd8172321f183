package kafka

import (
	"campcircle/internal/api/config"

	"github.com/IBM/sarama"
)

// newSaramaConfig 是一个包内私有的辅助函数
// 负责统一初始化 sarama.Config，避免代码重复
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Producer.RequiredAcks = sarama.WaitForLocal
	c.Producer.Return.Errors = true
	c.Producer.Return.Successes = false
	c.Producer.Compression = sarama.CompressionSnappy

	return c
}
