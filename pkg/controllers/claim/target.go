package claim

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Target adapts the engine to one kind of generated object.
type Target interface {
	// Kind is the Kubernetes kind of the generated object.
	Kind() string
	// NewObject returns an empty object addressed by namespace and name.
	NewObject(namespace, name string) client.Object
	// Desired builds the object carrying data, ready for create or apply.
	Desired(namespace, name string, data map[string]string) client.Object
	// Data returns the logical content of obj.
	Data(obj client.Object) map[string]string
}

// ConfigMapTarget writes claims into ConfigMaps.
type ConfigMapTarget struct{}

func (ConfigMapTarget) Kind() string { return "ConfigMap" }

func (ConfigMapTarget) NewObject(namespace, name string) client.Object {
	return &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
}

func (ConfigMapTarget) Desired(namespace, name string, data map[string]string) client.Object {
	configMap := &corev1.ConfigMap{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Data:       make(map[string]string, len(data)),
	}
	for key, value := range data {
		configMap.Data[key] = value
	}
	return configMap
}

func (ConfigMapTarget) Data(obj client.Object) map[string]string {
	configMap, ok := obj.(*corev1.ConfigMap)
	if !ok {
		return nil
	}
	return configMap.Data
}

// SecretTarget writes claims into opaque Secrets.
type SecretTarget struct{}

func (SecretTarget) Kind() string { return "Secret" }

func (SecretTarget) NewObject(namespace, name string) client.Object {
	return &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
}

func (SecretTarget) Desired(namespace, name string, data map[string]string) client.Object {
	secret := &corev1.Secret{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Type:       corev1.SecretTypeOpaque,
		Data:       make(map[string][]byte, len(data)),
	}
	for key, value := range data {
		secret.Data[key] = []byte(value)
	}
	return secret
}

// Data decodes the secret payload, including StringData not yet folded by
// the API server.
func (SecretTarget) Data(obj client.Object) map[string]string {
	secret, ok := obj.(*corev1.Secret)
	if !ok {
		return nil
	}
	if len(secret.Data) == 0 && len(secret.StringData) == 0 {
		return nil
	}
	decoded := make(map[string]string, len(secret.Data)+len(secret.StringData))
	for key, value := range secret.Data {
		decoded[key] = string(value)
	}
	for key, value := range secret.StringData {
		decoded[key] = value
	}
	return decoded
}
