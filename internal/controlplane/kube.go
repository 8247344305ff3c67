package controlplane

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	ktypes "k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"syncbench/internal/errdefs"
)

const restartedAtAnnotation = "syncbench.dev/restarted-at"

// Kube drives workloads as Deployments in a single namespace.
type Kube struct {
	Clientset kubernetes.Interface
	Namespace string
}

// NewKube builds a Kubernetes-backed control plane. It prefers in-cluster
// configuration and falls back to the local kubeconfig.
func NewKube(namespace string) (*Kube, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		kubeconfig := os.Getenv("KUBECONFIG")
		if kubeconfig == "" {
			home, herr := os.UserHomeDir()
			if herr != nil {
				return nil, fmt.Errorf("resolve home dir for kubeconfig: %w", herr)
			}
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("build kubeconfig: %w", err)
		}
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("create kubernetes client: %w", err)
	}
	if namespace == "" {
		namespace = "default"
	}
	return &Kube{Clientset: clientset, Namespace: namespace}, nil
}

// Ping verifies the API server answers.
func (k *Kube) Ping(ctx context.Context) error {
	if _, err := k.Clientset.Discovery().ServerVersion(); err != nil {
		return errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.ping", err)
	}
	return nil
}

// Create provisions a workload as a single Deployment. An existing
// deployment with the same name satisfies the call.
func (k *Kube) Create(ctx context.Context, spec Spec) error {
	replicas := spec.Replicas
	if replicas <= 0 {
		replicas = 1
	}
	podLabels := map[string]string{"app": spec.Name}
	for key, value := range spec.Labels {
		podLabels[key] = value
	}

	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:   spec.Name,
			Labels: podLabels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{"app": spec.Name},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: podLabels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:  "workload",
						Image: spec.Image,
					}},
				},
			},
		},
	}

	_, err := k.Clientset.AppsV1().Deployments(k.Namespace).Create(ctx, dep, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return nil
	}
	if err != nil {
		return errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.create", err)
	}
	return nil
}

// Get reports the current status of a named workload.
func (k *Kube) Get(ctx context.Context, name string) (Status, error) {
	dep, err := k.Clientset.AppsV1().Deployments(k.Namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return Status{}, fmt.Errorf("get deployment %s: %w", name, err)
	}
	return k.deploymentStatus(ctx, dep), nil
}

// Delete removes the workload's deployment. Unknown names are ignored.
func (k *Kube) Delete(ctx context.Context, name string) error {
	err := k.Clientset.AppsV1().Deployments(k.Namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete deployment %s: %w", name, err)
	}
	return nil
}

// ForceRefresh bumps the pod template restart annotation, the same
// mechanism kubectl rollout restart uses.
func (k *Kube) ForceRefresh(ctx context.Context, name string) error {
	patch := fmt.Sprintf(`{"spec":{"template":{"metadata":{"annotations":{%q:%q}}}}}`,
		restartedAtAnnotation, time.Now().UTC().Format(time.RFC3339))
	_, err := k.Clientset.AppsV1().Deployments(k.Namespace).Patch(ctx, name,
		ktypes.StrategicMergePatchType, []byte(patch), metav1.PatchOptions{})
	if err != nil {
		return fmt.Errorf("refresh deployment %s: %w", name, err)
	}
	return nil
}

// List reports all workloads matching the label selector, sorted by name.
func (k *Kube) List(ctx context.Context, selector map[string]string) ([]Status, error) {
	deps, err := k.Clientset.AppsV1().Deployments(k.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labels.Set(selector).String(),
	})
	if err != nil {
		return nil, errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.list", err)
	}
	out := make([]Status, 0, len(deps.Items))
	for i := range deps.Items {
		out = append(out, k.deploymentStatus(ctx, &deps.Items[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close is a no-op; the clientset holds no connection to release.
func (k *Kube) Close() error {
	return nil
}

func (k *Kube) deploymentStatus(ctx context.Context, dep *appsv1.Deployment) Status {
	st := Status{Name: dep.Name, Phase: PhaseProgressing}
	want := int32(1)
	if dep.Spec.Replicas != nil {
		want = *dep.Spec.Replicas
	}

	switch {
	case dep.Status.ObservedGeneration == 0:
		st.Phase = PhasePending
	case deploymentFailed(dep):
		st.Phase = PhaseDegraded
		st.Message = failureMessage(dep)
	case dep.Status.ReadyReplicas == want && dep.Status.UpdatedReplicas == want:
		st.Phase = PhaseReady
		st.Healthy = true
	}
	st.Incarnation = k.incarnation(ctx, dep.Name)
	return st
}

func deploymentFailed(dep *appsv1.Deployment) bool {
	for _, cond := range dep.Status.Conditions {
		if cond.Type == appsv1.DeploymentReplicaFailure && cond.Status == corev1.ConditionTrue {
			return true
		}
		if cond.Type == appsv1.DeploymentProgressing && cond.Status == corev1.ConditionFalse &&
			cond.Reason == "ProgressDeadlineExceeded" {
			return true
		}
	}
	return false
}

func failureMessage(dep *appsv1.Deployment) string {
	for _, cond := range dep.Status.Conditions {
		if cond.Message != "" {
			return cond.Message
		}
	}
	return "deployment failed to progress"
}

// incarnation resolves the newest pod backing the deployment. Best effort:
// an empty value means it could not be determined.
func (k *Kube) incarnation(ctx context.Context, name string) string {
	pods, err := k.Clientset.CoreV1().Pods(k.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labels.Set{"app": name}.String(),
	})
	if err != nil || len(pods.Items) == 0 {
		return ""
	}
	newest := pods.Items[0]
	for _, p := range pods.Items[1:] {
		if p.CreationTimestamp.After(newest.CreationTimestamp.Time) {
			newest = p
		}
	}
	return string(newest.UID)
}
