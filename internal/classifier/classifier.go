package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/model"
)

// ArtifactError — артефакт модели не удалось загрузить. Ошибка кешируется:
// до перезапуска процесса все запросы на скоринг получают её же, без
// повторных попыток чтения с диска.
type ArtifactError struct {
	Err error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("failed to load model artifacts: %v", e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// artifact — сериализованная логистическая регрессия: упорядоченный список
// признаков и веса к ним. Признаки, которых нет в заявке, остаются нулями.
type artifact struct {
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Model — ленивый процессный хендл к обученному классификатору.
// Загрузка происходит один раз при первом Predict (sync.Once),
// чтобы старт сервера не зависел от артефакта.
type Model struct {
	path   string
	logger *logrus.Logger

	once    sync.Once
	art     *artifact
	loadErr error
}

func New(path string, logger *logrus.Logger) *Model {
	return &Model{path: path, logger: logger}
}

func (m *Model) load() {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		m.loadErr = &ArtifactError{Err: err}
		m.logger.WithError(err).Errorf("Ошибка чтения артефакта модели %s", m.path)
		return
	}

	var art artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		m.loadErr = &ArtifactError{Err: err}
		m.logger.WithError(err).Error("Ошибка разбора артефакта модели")
		return
	}

	if len(art.FeatureNames) == 0 || len(art.FeatureNames) != len(art.Coefficients) {
		m.loadErr = &ArtifactError{Err: fmt.Errorf(
			"artifact is inconsistent: %d features vs %d coefficients",
			len(art.FeatureNames), len(art.Coefficients))}
		m.logger.Error("Артефакт модели несогласован")
		return
	}

	m.art = &art
	m.logger.WithField("features", len(art.FeatureNames)).Info("Артефакты модели успешно загружены")
}

// Predict возвращает бинарное решение модели и вероятность одобрения.
// Вектор признаков строится в порядке feature_names, незаполненные
// признаки остаются нулевыми.
func (m *Model) Predict(app model.LoanApplication) (int, float64, error) {
	m.once.Do(m.load)
	if m.loadErr != nil {
		return 0, 0, m.loadErr
	}

	values := map[string]float64{
		"income_annum": app.IncomeAnnum,
		"loan_amount":  app.LoanAmount,
		"loan_term":    app.LoanTermMonths,
		"cibil_score":  app.CibilScore,
	}

	score := m.art.Intercept
	for i, name := range m.art.FeatureNames {
		score += m.art.Coefficients[i] * values[name]
	}

	probability := 1.0 / (1.0 + math.Exp(-score))
	label := 0
	if probability >= 0.5 {
		label = 1
	}
	return label, probability, nil
}
