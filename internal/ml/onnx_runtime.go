package ml

import (
	"fmt"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"cassandra/pkg/errors"
)

// ONNXModel wraps an ONNX Runtime session for ML inference
type ONNXModel struct {
	session     *onnxruntime.DynamicAdvancedSession
	classNames  []string
	inputName   string
	outputNames []string
}

// LoadONNXModel loads an ONNX classification model from file.
// The model is expected to expose an "input" feature vector and two
// outputs: "output" (predicted class index) and "probabilities".
func LoadONNXModel(modelPath string, classNames []string) (*ONNXModel, error) {
	err := onnxruntime.InitializeEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, []string{"output", "probabilities"}, options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ONNX model")
	}

	return &ONNXModel{
		session:     session,
		classNames:  classNames,
		inputName:   "input",
		outputNames: []string{"output", "probabilities"},
	}, nil
}

// Predict runs inference on the model with given features.
// Returns the predicted class name and a probability map over classes.
func (m *ONNXModel) Predict(features []float64) (string, map[string]float64, error) {
	if m.session == nil {
		return "", nil, errors.New("model session is nil")
	}

	// Input tensor: shape [1, num_features]
	inputShape := onnxruntime.NewShape(1, int64(len(features)))
	inputTensor, err := onnxruntime.NewTensor(inputShape, features)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	// Output 1: predicted class (int64, shape [1])
	classOutput := make([]int64, 1)
	classShape := onnxruntime.NewShape(1)
	classTensor, err := onnxruntime.NewTensor(classShape, classOutput)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create class output tensor")
	}
	defer classTensor.Destroy()

	// Output 2: probabilities (float64, shape [1, num_classes])
	numClasses := len(m.classNames)
	probabilitiesOutput := make([]float64, numClasses)
	probShape := onnxruntime.NewShape(1, int64(numClasses))
	probTensor, err := onnxruntime.NewTensor(probShape, probabilitiesOutput)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create probabilities output tensor")
	}
	defer probTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{classTensor, probTensor}
	err = m.session.Run(inputs, outputs)
	if err != nil {
		return "", nil, errors.Wrap(err, "inference failed")
	}

	predictedClass := int(classOutput[0])
	if predictedClass < 0 || predictedClass >= len(m.classNames) {
		return "", nil, fmt.Errorf("invalid class index: %d", predictedClass)
	}

	probMap := make(map[string]float64)
	for i, prob := range probabilitiesOutput {
		if i < len(m.classNames) {
			probMap[m.classNames[i]] = prob
		}
	}

	return m.classNames[predictedClass], probMap, nil
}

// Destroy cleans up the ONNX session
func (m *ONNXModel) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
